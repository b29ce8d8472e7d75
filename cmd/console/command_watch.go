package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"console/internal/monitor"
	"console/internal/types"
)

// WatchCommand runs the poll cycle headless and prints one line per change.
type WatchCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewWatchCommand(wiring commandWiring) *WatchCommand {
	return &WatchCommand{
		stdout: wiring.stdout,
		stderr: wiring.stderr,
		wiring: wiring,
	}
}

func (c *WatchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	status := fs.String("status", "", "filter: all|active|transferred|closed")
	interval := fs.Duration("interval", 0, "poll interval (default from config)")
	once := fs.Bool("once", false, "print the first snapshot and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := types.ParseStatusFilter(*status)
	if err != nil {
		return err
	}

	cfg, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	every := cfg.PollInterval()
	if *interval > 0 {
		every = *interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := monitor.NewStore()
	fetcher := monitor.NewFetcher(api, logger)
	if *once {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
		defer cancel()
		snap, err := fetcher.Fetch(fetchCtx, filter)
		if err != nil {
			return err
		}
		store.Apply(snap)
		c.printChanges(monitor.Diff(monitor.State{}, store.Snapshot()))
		return nil
	}

	var (
		mu   sync.Mutex
		prev monitor.State
	)
	poller := monitor.NewPoller(fetcher, store,
		monitor.WithPollInterval(every),
		monitor.WithFetchTimeout(cfg.RequestTimeout()),
		monitor.WithPollLogger(logger),
		monitor.WithPollErrorHandler(func(err error) {
			fmt.Fprintf(c.stderr, "%s poll failed: %v\n", time.Now().Format("15:04:05"), err)
		}),
		monitor.WithApplyHandler(func(monitor.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			next := store.Snapshot()
			c.printChanges(monitor.Diff(prev, next))
			prev = next
		}),
	)
	poller.Start(ctx, filter)
	<-ctx.Done()
	poller.Stop()
	return nil
}

func (c *WatchCommand) printChanges(changes []monitor.Change) {
	stamp := time.Now().Format("15:04:05")
	for _, change := range changes {
		fmt.Fprintln(c.stdout, stamp+" "+describeChange(change))
	}
}

func describeChange(change monitor.Change) string {
	name := change.ID
	if change.Session != nil {
		name = fmt.Sprintf("%s (%s)", change.ID, change.Session.DisplayName())
	}
	switch change.Kind {
	case monitor.ChangeAdded:
		return fmt.Sprintf("added    %s status=%s", name, change.To)
	case monitor.ChangeRemoved:
		return "removed  " + name
	case monitor.ChangeStatus:
		return fmt.Sprintf("status   %s %s -> %s", name, change.From, change.To)
	case monitor.ChangeMessages:
		return fmt.Sprintf("messages %s +%d", name, change.NewMessages)
	case monitor.ChangeFocusEvicted:
		return "unfocus  " + name
	default:
		return string(change.Kind) + " " + name
	}
}
