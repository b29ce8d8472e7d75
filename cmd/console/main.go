package main

import (
	"fmt"
	"os"
)

const usageText = `console monitors and operates live customer conversations.

Usage:
  console <command> [flags]

Commands:
  ui        run the monitoring view
  ps        list conversations
  show      print one conversation's transcript
  watch     poll and print changes without the UI
  transfer  take over a conversation from the bot
  close     close a conversation
  delete    delete a conversation
  send      send a message as the operator
  stats     print dashboard counters
  login     obtain and save a bearer token
  config    print configuration (effective or defaults)
  help      show help

Flags:
  -h, --help   show help

Examples:
  console ui --status transferred
  console ps --status active
  console send 42 "Hi, this is Ana from support"
  console delete 42 --yes
  console config --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr, os.Stdin)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
