package main

import (
	"context"
	"io"
	"os"

	"console/internal/client"
	"console/internal/config"
	"console/internal/logging"
	"console/internal/monitor"
	"console/internal/types"
)

type commandRunner interface {
	Run(args []string) error
}

// remoteClient is everything the commands need from the conversation
// service. *client.Client satisfies it.
type remoteClient interface {
	monitor.API
	GetConversation(ctx context.Context, id string) (*types.Session, error)
	DashboardStats(ctx context.Context) (*types.DashboardStats, error)
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
}

type clientFactory func(cfg config.Config, logger logging.Logger) (remoteClient, error)

type uiRunner func(ctx context.Context, cfg config.Config, logger logging.Logger, api remoteClient, filter types.StatusFilter) error

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	stdin      io.Reader
	getenv     func(string) string
	loadConfig func() (config.Config, error)
	newClient  clientFactory
	runUI      uiRunner
}

func defaultCommandWiring(stdout, stderr io.Writer, stdin io.Reader) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		stdin:      stdin,
		getenv:     os.Getenv,
		loadConfig: config.Load,
		newClient:  newRemoteClient,
		runUI:      runMonitoringUI,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":       NewUICommand(wiring),
		"ps":       NewPSCommand(wiring),
		"show":     NewShowCommand(wiring),
		"watch":    NewWatchCommand(wiring),
		"transfer": NewTransferCommand(wiring),
		"close":    NewCloseCommand(wiring),
		"delete":   NewDeleteCommand(wiring),
		"send":     NewSendCommand(wiring),
		"stats":    NewStatsCommand(wiring),
		"login":    NewLoginCommand(wiring),
		"config":   NewConfigCommand(wiring.stdout, wiring.stderr, wiring.loadConfig),
	}
}

// connect loads the config and builds a client that logs to stderr.
func (w commandWiring) connect() (config.Config, remoteClient, logging.Logger, error) {
	cfg, err := w.loadConfig()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := logging.New(w.stderr, logging.ParseLevel(cfg.LogLevel()))
	api, err := w.newClient(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, api, logger, nil
}

func newRemoteClient(cfg config.Config, logger logging.Logger) (remoteClient, error) {
	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		return nil, err
	}
	return client.New(client.Options{
		BaseURL:   cfg.BaseURL(),
		Token:     cfg.Token(),
		TokenPath: tokenPath,
		Timeout:   cfg.RequestTimeout(),
		Logger:    logger,
	}), nil
}
