package app

import (
	"github.com/charmbracelet/lipgloss"

	"console/internal/types"
)

var (
	headerStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	selectedStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	previewStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	filterTabStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	filterTabActiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true).Padding(0, 1)
	menuDropStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	dialogHeaderStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmDialogBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	composeFrameStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	chatMetaStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	userSenderStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	botSenderStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("180")).Bold(true)
	agentSenderStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)

	statusActiveStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	statusTransferredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusClosedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	toastInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)

func statusStyleFor(status types.SessionStatus) lipgloss.Style {
	switch status {
	case types.SessionStatusActive:
		return statusActiveStyle
	case types.SessionStatusTransferred:
		return statusTransferredStyle
	default:
		return statusClosedStyle
	}
}

func senderStyleFor(sender types.Sender) lipgloss.Style {
	switch sender {
	case types.SenderUser:
		return userSenderStyle
	case types.SenderBot:
		return botSenderStyle
	default:
		return agentSenderStyle
	}
}

func senderLabel(sender types.Sender) string {
	switch sender {
	case types.SenderUser:
		return "Customer"
	case types.SenderBot:
		return "Bot"
	case types.SenderAgent:
		return "Agent"
	default:
		return string(sender)
	}
}

func statusBadge(status types.SessionStatus) string {
	switch status {
	case types.SessionStatusActive:
		return "●"
	case types.SessionStatusTransferred:
		return "◆"
	default:
		return "○"
	}
}
