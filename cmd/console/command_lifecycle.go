package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type TransferCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewTransferCommand(wiring commandWiring) *TransferCommand {
	return &TransferCommand{stdout: wiring.stdout, stderr: wiring.stderr, wiring: wiring}
}

func (c *TransferCommand) Run(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("transfer requires a conversation id")
	}

	ctx := context.Background()
	_, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	ctrl, session, err := sessionController(ctx, api, fs.Arg(0), logger)
	if err != nil {
		return err
	}
	if err := ctrl.Transfer(ctx, session.ID); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

type CloseCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewCloseCommand(wiring commandWiring) *CloseCommand {
	return &CloseCommand{stdout: wiring.stdout, stderr: wiring.stderr, wiring: wiring}
}

func (c *CloseCommand) Run(args []string) error {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("close requires a conversation id")
	}

	ctx := context.Background()
	_, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	ctrl, session, err := sessionController(ctx, api, fs.Arg(0), logger)
	if err != nil {
		return err
	}
	if err := ctrl.Close(ctx, session.ID); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

// DeleteCommand asks on stdin before deleting unless --yes is given.
type DeleteCommand struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	wiring commandWiring
}

func NewDeleteCommand(wiring commandWiring) *DeleteCommand {
	return &DeleteCommand{stdout: wiring.stdout, stderr: wiring.stderr, stdin: wiring.stdin, wiring: wiring}
}

func (c *DeleteCommand) Run(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("delete requires a conversation id")
	}

	ctx := context.Background()
	_, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	ctrl, session, err := sessionController(ctx, api, fs.Arg(0), logger)
	if err != nil {
		return err
	}
	confirm, err := ctrl.RequestDelete(session.ID)
	if err != nil {
		return err
	}
	if !*yes {
		fmt.Fprint(c.stderr, confirm.Prompt()+" [y/N] ")
		answer, _ := bufio.NewReader(c.stdin).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			ctrl.CancelDelete(session.ID)
			fmt.Fprintln(c.stdout, "cancelled")
			return nil
		}
	}
	if err := ctrl.Delete(ctx, confirm); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

type SendCommand struct {
	stdout io.Writer
	stderr io.Writer
	wiring commandWiring
}

func NewSendCommand(wiring commandWiring) *SendCommand {
	return &SendCommand{stdout: wiring.stdout, stderr: wiring.stderr, wiring: wiring}
}

func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("send requires a conversation id and a message")
	}
	text := strings.Join(fs.Args()[1:], " ")

	ctx := context.Background()
	_, api, logger, err := c.wiring.connect()
	if err != nil {
		return err
	}
	ctrl, session, err := sessionController(ctx, api, fs.Arg(0), logger)
	if err != nil {
		return err
	}
	if err := ctrl.SendMessage(ctx, session.ID, text); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "sent")
	return nil
}
