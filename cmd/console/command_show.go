package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
)

type ShowCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewShowCommand(wiring commandWiring) *ShowCommand {
	return &ShowCommand{
		stdout: wiring.stdout,
		stderr: wiring.stderr,
		wiring: wiring,
	}
}

func (c *ShowCommand) Run(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("show requires a conversation id")
	}

	ctx := context.Background()
	_, api, _, err := c.wiring.connect()
	if err != nil {
		return err
	}
	session, err := api.GetConversation(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *asJSON {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(session)
	}
	printTranscript(c.stdout, session)
	return nil
}
