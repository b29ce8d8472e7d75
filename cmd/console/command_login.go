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

const envPassword = "CONSOLE_PASSWORD"

// LoginCommand exchanges credentials for a token and saves it to the token
// file. The password comes from CONSOLE_PASSWORD or the first stdin line.
type LoginCommand struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	wiring commandWiring
}

func NewLoginCommand(wiring commandWiring) *LoginCommand {
	return &LoginCommand{stdout: wiring.stdout, stderr: wiring.stderr, stdin: wiring.stdin, wiring: wiring}
}

func (c *LoginCommand) Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	username := fs.String("username", "", "account username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return errors.New("login requires --username")
	}
	password := c.wiring.getenv(envPassword)
	if password == "" {
		fmt.Fprint(c.stderr, "password: ")
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password is required")
	}

	cfg, api, _, err := c.wiring.connect()
	if err != nil {
		return err
	}
	resp, err := api.Login(context.Background(), *username, password)
	if err != nil {
		return err
	}
	tokenPath, _ := cfg.ResolveTokenPath()
	fmt.Fprintf(c.stdout, "logged in (%s token saved to %s)\n", strings.ToLower(resp.TokenType), tokenPath)
	return nil
}
