package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"console/internal/logging"
	"console/internal/monitor"
	"console/internal/types"
)

const (
	nameColumnWidth    = 24
	phoneColumnWidth   = 18
	previewColumnWidth = 40
)

func printSessions(output io.Writer, sessions []*types.Session) {
	fmt.Fprintln(output, sessionRow("ID", "STATUS", "HUMAN", "PHONE", "NAME", "ACTIVITY", "LAST MESSAGE"))
	for _, session := range sessions {
		human := "-"
		if session.TransferredToHuman {
			human = "yes"
		}
		preview := ""
		if last, ok := session.LastMessage(); ok {
			preview = string(last.Sender) + ": " + last.Content
		}
		fmt.Fprintln(output, sessionRow(
			session.ID,
			string(session.Status),
			human,
			session.PhoneNumber,
			session.DisplayName(),
			formatTime(session.ActivityAt()),
			preview,
		))
	}
}

// sessionRow pads by display width so names with wide runes stay aligned.
func sessionRow(id, status, human, phone, name, activity, preview string) string {
	cols := []string{
		column(id, 8),
		column(status, 12),
		column(human, 6),
		column(phone, phoneColumnWidth),
		column(name, nameColumnWidth),
		column(activity, 17),
		runewidth.Truncate(strings.ReplaceAll(preview, "\n", " "), previewColumnWidth, "…"),
	}
	return strings.TrimRight(strings.Join(cols, "  "), " ")
}

func column(value string, width int) string {
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, "…")
	}
	return runewidth.FillRight(value, width)
}

func printTranscript(output io.Writer, session *types.Session) {
	fmt.Fprintf(output, "%s  %s\n", session.DisplayName(), session.PhoneNumber)
	fmt.Fprintf(output, "id=%s status=%s human=%t started=%s\n\n",
		session.ID, session.Status, session.TransferredToHuman, formatTime(session.StartedAt))
	for _, msg := range session.Messages {
		fmt.Fprintf(output, "[%s] %s: %s\n", formatTime(msg.Timestamp), msg.Sender, msg.Content)
	}
}

func formatTime(ts types.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// sessionController seeds a one-session store from the remote so that CLI
// commands go through the same gating as the monitoring view.
func sessionController(ctx context.Context, api remoteClient, id string, logger logging.Logger) (*monitor.Controller, *types.Session, error) {
	session, err := api.GetConversation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	store := monitor.NewStore()
	store.Apply(monitor.Snapshot{Sessions: []*types.Session{session}, FetchedAt: time.Now()})
	return monitor.NewController(api, store, nil, nil, logger), session, nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
