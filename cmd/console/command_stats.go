package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

type StatsCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewStatsCommand(wiring commandWiring) *StatsCommand {
	return &StatsCommand{stdout: wiring.stdout, stderr: wiring.stderr, wiring: wiring}
}

func (c *StatsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, api, _, err := c.wiring.connect()
	if err != nil {
		return err
	}
	stats, err := api.DashboardStats(context.Background())
	if err != nil {
		return err
	}
	if *asJSON {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}
	fmt.Fprintf(c.stdout, "active:       %d\n", stats.ActiveConversations)
	fmt.Fprintf(c.stdout, "transferred:  %d\n", stats.TransferredConversations)
	fmt.Fprintf(c.stdout, "messages today: %d\n", stats.MessagesToday)
	fmt.Fprintf(c.stdout, "users:        %d\n", stats.TotalUsers)
	return nil
}
