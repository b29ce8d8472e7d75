package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// fitPlain truncates or pads unstyled text to exactly width columns.
func fitPlain(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// truncateToWidth truncates text that may carry ANSI styling.
func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(text) <= width {
		return text
	}
	return xansi.Truncate(text, width, "…")
}

func padToWidth(text string, width int) string {
	if w := xansi.StringWidth(text); w < width {
		return text + strings.Repeat(" ", width-w)
	}
	return text
}

// fitBlock clips or pads lines to a width by height rectangle.
func fitBlock(lines []string, width, height int) []string {
	out := make([]string, 0, height)
	for _, line := range lines {
		if len(out) == height {
			break
		}
		out = append(out, padToWidth(truncateToWidth(line, width), width))
	}
	for len(out) < height {
		out = append(out, strings.Repeat(" ", max(0, width)))
	}
	return out
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	wrapped := xansi.Wordwrap(text, width, "")
	wrapped = xansi.Hardwrap(wrapped, width, true)
	return strings.Split(wrapped, "\n")
}
