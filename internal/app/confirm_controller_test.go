package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestConfirmControllerKeys(t *testing.T) {
	c := NewConfirmController()
	if handled, _ := c.HandleKey(tea.KeyPressMsg{Code: 'y', Text: "y"}); handled {
		t.Fatalf("closed dialog must not handle keys")
	}
	c.Open("Delete", "Really?", "Delete", "Keep")
	if _, choice := c.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter}); choice != confirmChoiceCancel {
		t.Fatalf("expected cancel to be the default, got %v", choice)
	}
	c.HandleKey(tea.KeyPressMsg{Code: tea.KeyLeft})
	if _, choice := c.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter}); choice != confirmChoiceConfirm {
		t.Fatalf("expected confirm after moving left, got %v", choice)
	}
	if _, choice := c.HandleKey(tea.KeyPressMsg{Code: tea.KeyEscape}); choice != confirmChoiceCancel {
		t.Fatalf("expected esc to cancel")
	}
}

func TestConfirmControllerView(t *testing.T) {
	c := NewConfirmController()
	if c.View(80) != "" {
		t.Fatalf("expected empty view when closed")
	}
	c.Open("Delete conversation", "Delete conversation with Ana? This cannot be undone.", "Delete", "Keep")
	out := xansi.Strip(c.View(50))
	for _, want := range []string{"Delete conversation", "[Delete]", "[Keep]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in dialog:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(c.View(50), "\n") {
		if w := xansi.StringWidth(line); w > 50 {
			t.Fatalf("dialog line exceeds width: %d", w)
		}
	}
}
