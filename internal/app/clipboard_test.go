package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func stubClipboard(t *testing.T, system, osc func(string) error) {
	t.Helper()
	prevSystem, prevOSC := clipboardWriteAll, clipboardWriteOSC52
	clipboardWriteAll, clipboardWriteOSC52 = system, osc
	t.Cleanup(func() {
		clipboardWriteAll, clipboardWriteOSC52 = prevSystem, prevOSC
	})
}

func TestCopyFallsBackToOSC52(t *testing.T) {
	var copied string
	stubClipboard(t,
		func(string) error { return errors.New("no xclip") },
		func(text string) error { copied = text; return nil },
	)
	method, err := copyTextToClipboard("+55 11 9000-1")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if method != clipboardMethodOSC52 || copied != "+55 11 9000-1" {
		t.Fatalf("expected osc52 copy, got method=%v text=%q", method, copied)
	}
}

func TestCopyReportsBothFailures(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	stubClipboard(t,
		func(string) error { return errors.New("no xclip") },
		func(string) error { return errors.New("no tty") },
	)
	_, err := copyTextToClipboard("x")
	if err == nil || !strings.Contains(err.Error(), "no xclip") || !strings.Contains(err.Error(), "no tty") {
		t.Fatalf("expected combined error, got %v", err)
	}
}

func TestCopyWithToastRejectsBlank(t *testing.T) {
	calls := 0
	stubClipboard(t, func(string) error { calls++; return nil }, func(string) error { calls++; return nil })
	m, _ := newTestModel(t)
	if m.copyWithToast("  ", "copied") {
		t.Fatalf("expected blank copy to fail")
	}
	if calls != 0 || m.toastLevel != toastLevelWarning {
		t.Fatalf("expected warning without clipboard calls, calls=%d level=%v", calls, m.toastLevel)
	}
}

func TestOSC52SequenceWrapsForTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-0/default,1,0")
	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "hi"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "\x1bPtmux;") {
		t.Fatalf("expected tmux passthrough, got %q", buf.String())
	}
}

func TestShouldAttemptOSC52(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("CONSOLE_DISABLE_OSC52", "")
	if !shouldAttemptOSC52() {
		t.Fatalf("expected osc52 for xterm")
	}
	t.Setenv("CONSOLE_DISABLE_OSC52", "yes")
	if shouldAttemptOSC52() {
		t.Fatalf("expected env override to disable osc52")
	}
	t.Setenv("CONSOLE_DISABLE_OSC52", "")
	t.Setenv("TERM", "dumb")
	if shouldAttemptOSC52() {
		t.Fatalf("expected dumb terminal to skip osc52")
	}
}
