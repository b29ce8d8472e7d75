package main

import (
	"context"
	"flag"
	"io"
	"os/signal"
	"syscall"

	"console/internal/app"
	"console/internal/config"
	"console/internal/logging"
	"console/internal/monitor"
	"console/internal/store"
	"console/internal/types"
)

type UICommand struct {
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
	runUI      uiRunner
}

func NewUICommand(wiring commandWiring) *UICommand {
	return &UICommand{
		stderr:     wiring.stderr,
		loadConfig: wiring.loadConfig,
		newClient:  wiring.newClient,
		runUI:      wiring.runUI,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	status := fs.String("status", "", "initial filter (default: last used, then config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var filter types.StatusFilter
	if *status != "" {
		parsed, err := types.ParseStatusFilter(*status)
		if err != nil {
			return err
		}
		filter = parsed
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, closer, err := openUILog(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	api, err := c.newClient(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	return c.runUI(ctx, cfg, logger, api, filter)
}

// openUILog sends logs to a file; the terminal belongs to the UI.
func openUILog(cfg config.Config) (logging.Logger, io.Closer, error) {
	path, err := config.UILogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(path, logging.ParseLevel(cfg.LogLevel()))
}

func repositoryPaths() (store.RepositoryPaths, error) {
	statePath, err := config.ViewStatePath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	return store.RepositoryPaths{ViewStatePath: statePath, DBPath: dbPath}, nil
}

func runMonitoringUI(ctx context.Context, cfg config.Config, logger logging.Logger, api remoteClient, filter types.StatusFilter) error {
	paths, err := repositoryPaths()
	if err != nil {
		return err
	}
	repo, err := store.OpenRepository(paths, cfg.StorageBackend())
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := store.SeedRepositoryFromFiles(ctx, repo, paths); err != nil {
		logger.Warn("view state migration failed", logging.Err(err))
	}
	if filter == "" {
		filter = initialFilter(ctx, repo.ViewState(), cfg.DefaultFilter())
	}

	relay := app.NewErrorRelay()
	view := monitor.NewView(api,
		monitor.WithInterval(cfg.PollInterval()),
		monitor.WithRequestTimeout(cfg.RequestTimeout()),
		monitor.WithLogger(logger),
		monitor.WithStateStore(repo.ViewState()),
		monitor.WithErrorHandler(relay.Report),
	)
	return app.Run(ctx, view, relay, filter, logger)
}

// initialFilter prefers the filter saved by the last run, then fallback.
func initialFilter(ctx context.Context, states store.ViewStateStore, fallback types.StatusFilter) types.StatusFilter {
	saved, err := states.Load(ctx)
	if err != nil || saved == nil || saved.Filter == "" {
		return fallback
	}
	return saved.Filter
}
