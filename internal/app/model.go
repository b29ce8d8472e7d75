package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"console/internal/client"
	"console/internal/logging"
	"console/internal/monitor"
	"console/internal/types"
)

const (
	minListWidth   = 28
	maxListWidth   = 44
	minDetailWidth = 30
	scrollStep     = 5
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeCompose
)

// Model is the monitoring screen. It renders the view's store and turns
// keys into focus changes and lifecycle commands.
type Model struct {
	ctx         context.Context
	view        *monitor.View
	relay       *ErrorRelay
	updates     <-chan struct{}
	unsubscribe func()
	logger      logging.Logger
	keys        keyMap
	now         func() time.Time

	state         monitor.State
	mode          uiMode
	compose       textinput.Model
	composeID     string
	confirm       *ConfirmController
	pendingDelete *monitor.DeleteConfirmation
	scroll        int
	width         int
	height        int
	status        string

	toastText  string
	toastLevel toastLevel
	toastUntil time.Time
}

type ModelOption func(*Model)

func WithModelLogger(logger logging.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithErrorRelay(relay *ErrorRelay) ModelOption {
	return func(m *Model) {
		m.relay = relay
	}
}

func NewModel(ctx context.Context, view *monitor.View, opts ...ModelOption) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	compose := textinput.New()
	compose.Prompt = "› "
	compose.Placeholder = "Type a reply"
	compose.CharLimit = 4096
	m := &Model{
		ctx:     ctx,
		view:    view,
		logger:  logging.Nop(),
		keys:    defaultKeyMap(),
		now:     time.Now,
		compose: compose,
		confirm: NewConfirmController(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.updates, m.unsubscribe = view.Store().Subscribe()
	m.state = view.Store().Snapshot()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForStoreChange(m.updates), waitForPollError(m.relay), toastTick())
}

// Close releases the store subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.compose.SetWidth(max(10, m.detailWidth()-6))
		return m, nil
	case storeChangedMsg:
		m.syncState()
		return m, waitForStoreChange(m.updates)
	case pollErrorMsg:
		m.handlePollError(msg.err)
		return m, waitForPollError(m.relay)
	case commandResultMsg:
		m.handleCommandResult(msg)
		return m, nil
	case toastTickMsg:
		return m, toastTick()
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	if m.mode == uiModeCompose {
		var cmd tea.Cmd
		m.compose, cmd = m.compose.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) syncState() {
	prev := m.state
	m.state = m.view.Store().Snapshot()
	for _, change := range monitor.Diff(prev, m.state) {
		switch change.Kind {
		case monitor.ChangeFocusEvicted:
			m.showWarningToast("conversation " + change.ID + " is no longer listed")
		case monitor.ChangeStatus:
			if change.ID == m.state.FocusID {
				m.showInfoToast(fmt.Sprintf("%s is now %s", change.Session.DisplayName(), change.To))
			}
		}
	}
	if m.state.FocusID != prev.FocusID {
		m.scroll = 0
	}
	if m.mode == uiModeCompose {
		if m.state.FocusID != m.composeID || !m.view.Commands().Allowed(m.composeID).Send {
			m.leaveCompose()
		}
	}
	if m.pendingDelete != nil {
		if _, ok := m.state.Find(m.pendingDelete.SessionID); !ok {
			m.confirm.Close()
			m.pendingDelete = nil
		}
	}
}

func (m *Model) handlePollError(err error) {
	if err == nil {
		return
	}
	switch client.KindOf(err) {
	case client.KindUnauthorized:
		m.status = "credential rejected; run `console login`"
		m.showErrorToast("unauthorized: " + errorMessage(err))
	case client.KindMalformedResponse:
		m.showErrorToast("unexpected response from server")
	default:
		m.status = "server unreachable; retrying"
		m.showWarningToast(errorMessage(err))
	}
}

func (m *Model) handleCommandResult(msg commandResultMsg) {
	if msg.err != nil {
		if client.IsKind(msg.err, client.KindValidationRejected) {
			m.showWarningToast(errorMessage(msg.err))
			return
		}
		m.showErrorToast(msg.op + " failed: " + errorMessage(msg.err))
		return
	}
	m.status = ""
	switch msg.op {
	case "send":
		if m.composeID == msg.id {
			m.compose.SetValue("")
		}
		m.showInfoToast("message sent")
	case "transfer":
		m.showInfoToast("conversation transferred to you")
	case "close":
		m.showInfoToast("conversation closed")
	case "delete":
		m.showInfoToast("conversation deleted")
	}
	m.syncState()
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.confirm.IsOpen() {
		return m, m.handleConfirmKey(msg)
	}
	if m.mode == uiModeCompose {
		return m, m.handleComposeKey(msg)
	}
	commands := m.view.Commands()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Unfocus):
		m.view.Focus().Clear()
		m.syncState()
	case key.Matches(msg, m.keys.Compose):
		return m, m.enterCompose()
	case key.Matches(msg, m.keys.Transfer):
		if id := m.state.FocusID; id != "" {
			return m, transferCmd(m.ctx, commands, id)
		}
	case key.Matches(msg, m.keys.Close):
		if id := m.state.FocusID; id != "" {
			return m, closeCmd(m.ctx, commands, id)
		}
	case key.Matches(msg, m.keys.Delete):
		m.requestDelete()
	case key.Matches(msg, m.keys.Filter):
		next := m.view.Filter().Next()
		if err := m.view.SetFilter(next); err != nil {
			m.showErrorToast(err.Error())
		}
	case key.Matches(msg, m.keys.Refresh):
		m.view.Refresh()
	case key.Matches(msg, m.keys.CopyPhone):
		if m.state.Focused != nil {
			m.copyWithToast(m.state.Focused.PhoneNumber, "phone number copied")
		}
	case key.Matches(msg, m.keys.CopyMessage):
		if last, ok := m.state.Focused.LastMessage(); ok {
			m.copyWithToast(last.Content, "last message copied")
		}
	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll += scrollStep
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll = max(0, m.scroll-scrollStep)
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) tea.Cmd {
	_, choice := m.confirm.HandleKey(msg)
	switch choice {
	case confirmChoiceConfirm:
		pending := m.pendingDelete
		m.confirm.Close()
		m.pendingDelete = nil
		if pending != nil {
			return deleteCmd(m.ctx, m.view.Commands(), *pending)
		}
	case confirmChoiceCancel:
		if m.pendingDelete != nil {
			m.view.Commands().CancelDelete(m.pendingDelete.SessionID)
		}
		m.confirm.Close()
		m.pendingDelete = nil
	}
	return nil
}

func (m *Model) handleComposeKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.leaveCompose()
		return nil
	case "enter":
		text := m.compose.Value()
		m.view.Drafts().Set(m.composeID, text)
		return sendCmd(m.ctx, m.view.Commands(), m.composeID, text)
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	m.view.Drafts().Set(m.composeID, m.compose.Value())
	return cmd
}

func (m *Model) enterCompose() tea.Cmd {
	session := m.state.Focused
	if session == nil {
		m.showWarningToast("select a conversation first")
		return nil
	}
	if !m.view.Commands().Allowed(session.ID).Send {
		if session.IsClosed() {
			m.showWarningToast("conversation is closed")
		} else {
			m.showWarningToast("take over the conversation (t) before replying")
		}
		return nil
	}
	m.mode = uiModeCompose
	m.composeID = session.ID
	m.compose.SetValue(m.view.Drafts().Get(session.ID))
	m.compose.CursorEnd()
	return m.compose.Focus()
}

// leaveCompose exits compose mode. The draft stays in the view's drafts.
func (m *Model) leaveCompose() {
	if m.composeID != "" {
		m.view.Drafts().Set(m.composeID, m.compose.Value())
	}
	m.compose.Blur()
	m.compose.SetValue("")
	m.composeID = ""
	m.mode = uiModeNormal
}

func (m *Model) requestDelete() {
	id := m.state.FocusID
	if id == "" {
		m.showWarningToast("select a conversation first")
		return
	}
	confirm, err := m.view.Commands().RequestDelete(id)
	if err != nil {
		m.showWarningToast(errorMessage(err))
		return
	}
	m.pendingDelete = &confirm
	m.confirm.Open("Delete conversation", confirm.Prompt(), "Delete", "Keep")
}

// moveFocus selects the session delta rows away from the focused one. The
// row is looked up by id on each move, so refreshes that reorder the list
// never change which session is focused.
func (m *Model) moveFocus(delta int) {
	sessions := m.state.Sessions
	if len(sessions) == 0 {
		return
	}
	idx := m.focusIndex()
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(sessions) - 1
	default:
		idx = min(max(idx+delta, 0), len(sessions)-1)
	}
	if err := m.view.Focus().Select(sessions[idx].ID); err != nil {
		m.showWarningToast(errorMessage(err))
	}
	m.syncState()
}

func (m *Model) focusIndex() int {
	for i, session := range m.state.Sessions {
		if session.ID == m.state.FocusID {
			return i
		}
	}
	return -1
}

func errorMessage(err error) string {
	var typed *client.Error
	if errors.As(err, &typed) && typed.Message != "" {
		return typed.Message
	}
	return err.Error()
}

func filterLabel(filter types.StatusFilter) string {
	switch filter.Normalize() {
	case types.StatusFilterAll:
		return "All"
	case types.StatusFilter(types.SessionStatusActive):
		return "Active"
	case types.StatusFilter(types.SessionStatusTransferred):
		return "Transferred"
	case types.StatusFilter(types.SessionStatusClosed):
		return "Closed"
	default:
		return string(filter)
	}
}
