package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"console/internal/monitor"
	"console/internal/types"
)

type PSCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewPSCommand(wiring commandWiring) *PSCommand {
	return &PSCommand{
		stdout: wiring.stdout,
		stderr: wiring.stderr,
		wiring: wiring,
	}
}

func (c *PSCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ps", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	status := fs.String("status", "", "filter: all|active|transferred|closed")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := types.ParseStatusFilter(*status)
	if err != nil {
		return err
	}

	ctx := context.Background()
	_, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	snap, err := monitor.NewFetcher(api, logger).Fetch(ctx, filter)
	if err != nil {
		return err
	}
	if *asJSON {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snap.Sessions)
	}
	printSessions(c.stdout, snap.Sessions)
	return nil
}
