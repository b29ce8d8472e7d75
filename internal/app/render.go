package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"console/internal/types"
)

func (m *Model) listWidth() int {
	width := min(max(m.width/3, minListWidth), maxListWidth)
	if m.width-width-1 < minDetailWidth {
		width = max(10, m.width-minDetailWidth-1)
	}
	return width
}

func (m *Model) detailWidth() int {
	return max(1, m.width-m.listWidth()-1)
}

func (m *Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return "loading conversations…"
	}
	bodyHeight := max(1, m.height-3)
	listWidth := m.listWidth()
	detailWidth := m.detailWidth()

	list := fitBlock(m.renderList(listWidth, bodyHeight), listWidth, bodyHeight)
	var detail []string
	if m.confirm.IsOpen() {
		dialog := lipgloss.Place(detailWidth, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View(detailWidth))
		detail = strings.Split(dialog, "\n")
	} else {
		detail = m.renderDetail(detailWidth, bodyHeight)
	}
	detail = fitBlock(detail, detailWidth, bodyHeight)

	divider := dividerStyle.Render("│")
	lines := make([]string, 0, m.height)
	lines = append(lines, truncateToWidth(m.renderHeader(), m.width))
	for i := 0; i < bodyHeight; i++ {
		lines = append(lines, list[i]+divider+detail[i])
	}
	lines = append(lines, m.renderStatusLine())
	help := m.keys.helpLine()
	if m.mode == uiModeCompose {
		help = composeHelp
	}
	lines = append(lines, helpStyle.Render(truncateToWidth(help, m.width)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	current := m.view.Filter()
	tabs := make([]string, 0, len(types.StatusFilters))
	for _, filter := range types.StatusFilters {
		style := filterTabStyle
		if filter == current {
			style = filterTabActiveStyle
		}
		tabs = append(tabs, style.Render(filterLabel(filter)))
	}
	counts := m.state.Counts()
	summary := statusStyle.Render(fmt.Sprintf("%d active · %d transferred · %d closed",
		counts[types.SessionStatusActive],
		counts[types.SessionStatusTransferred],
		counts[types.SessionStatusClosed],
	))
	return headerStyle.Render("Conversations") + "  " + strings.Join(tabs, "") + "  " + summary
}

func (m *Model) renderStatusLine() string {
	if toast := m.toastLine(m.width); toast != "" {
		return toast
	}
	status := m.status
	if status == "" && !m.state.UpdatedAt.IsZero() {
		status = "updated " + m.state.UpdatedAt.Local().Format("15:04:05")
	}
	return statusStyle.Render(truncateToWidth(status, m.width))
}

// renderList draws two rows per session and scrolls so that the focused
// session stays visible.
func (m *Model) renderList(width, height int) []string {
	sessions := m.state.Sessions
	if len(sessions) == 0 {
		return []string{previewStyle.Render(fitPlain(" no conversations", width))}
	}
	const rowsPerSession = 2
	visible := max(1, height/rowsPerSession)
	start := 0
	if idx := m.focusIndex(); idx >= visible {
		start = idx - visible + 1
	}
	lines := make([]string, 0, height)
	for _, session := range sessions[start:] {
		if len(lines)+rowsPerSession > height {
			break
		}
		title, preview := listRows(session, width)
		if session.ID == m.state.FocusID {
			title = selectedStyle.Render(title)
			preview = selectedStyle.Render(preview)
		} else {
			title = statusStyleFor(session.Status).Render(title[:len(statusBadge(session.Status))]) + title[len(statusBadge(session.Status)):]
			preview = previewStyle.Render(preview)
		}
		lines = append(lines, title, preview)
	}
	return lines
}

func listRows(session *types.Session, width int) (string, string) {
	badge := statusBadge(session.Status)
	clock := formatClock(session.ActivityAt())
	nameWidth := max(1, width-2-len(clock)-1)
	title := badge + " " + fitPlain(session.DisplayName(), nameWidth) + " " + clock
	preview := ""
	if last, ok := session.LastMessage(); ok {
		preview = senderLabel(last.Sender) + ": " + last.Content
	}
	return title, fitPlain("  "+preview, width)
}

func (m *Model) renderDetail(width, height int) []string {
	session := m.state.Focused
	if session == nil {
		return []string{"", previewStyle.Render(" Select a conversation with ↑/↓ to see its messages.")}
	}
	header := []string{
		headerStyle.Render(" "+session.DisplayName()) + statusStyle.Render("  "+session.PhoneNumber),
		" " + statusStyleFor(session.Status).Render(string(session.Status)) + humanFlag(session) +
			statusStyle.Render("  started "+formatDateTime(session.StartedAt)),
		dividerStyle.Render(strings.Repeat("─", width)),
	}

	footer := m.renderComposeArea(session, width)
	available := max(0, height-len(header)-len(footer))
	transcript := renderTranscript(session, width-2)
	end := max(0, len(transcript)-m.scroll)
	if m.scroll > 0 && end < available {
		end = min(len(transcript), available)
		m.scroll = len(transcript) - end
	}
	start := max(0, end-available)
	body := make([]string, 0, available)
	for _, line := range transcript[start:end] {
		body = append(body, " "+line)
	}
	for len(body) < available {
		body = append(body, "")
	}

	lines := append(header, body...)
	return append(lines, footer...)
}

func (m *Model) renderComposeArea(session *types.Session, width int) []string {
	if m.mode == uiModeCompose && m.composeID == session.ID {
		frame := composeFrameStyle.Width(max(10, width-2)).Render(m.compose.View())
		return strings.Split(frame, "\n")
	}
	allowed := m.view.Commands().Allowed(session.ID)
	switch {
	case allowed.Send:
		hint := "enter to reply"
		if draft := m.view.Drafts().Get(session.ID); draft != "" {
			hint = "draft: " + draft
		}
		return []string{helpStyle.Render(" " + truncateToWidth(hint, width-2))}
	case allowed.Transfer:
		return []string{helpStyle.Render(" bot is answering · t to take over")}
	default:
		return []string{helpStyle.Render(" conversation closed")}
	}
}

func renderTranscript(session *types.Session, width int) []string {
	width = max(10, width)
	var lines []string
	for _, msg := range session.Messages {
		meta := senderStyleFor(msg.Sender).Render(senderLabel(msg.Sender))
		if clock := formatClock(msg.Timestamp); clock != "" {
			meta += chatMetaStyle.Render(" " + clock)
		}
		lines = append(lines, meta)
		if msg.Sender == types.SenderBot {
			lines = append(lines, strings.Split(renderMarkdown(msg.Content, width), "\n")...)
		} else {
			lines = append(lines, wrapText(msg.Content, width)...)
		}
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		return []string{previewStyle.Render("no messages yet")}
	}
	return lines[:len(lines)-1]
}

func humanFlag(session *types.Session) string {
	if session.TransferredToHuman {
		return statusStyle.Render(" · human")
	}
	return ""
}

func formatClock(ts types.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("15:04")
}

func formatDateTime(ts types.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
