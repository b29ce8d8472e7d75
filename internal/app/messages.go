package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"console/internal/monitor"
)

const toastTickInterval = time.Second

type storeChangedMsg struct{}

type pollErrorMsg struct {
	err error
}

type commandResultMsg struct {
	op  string
	id  string
	err error
}

type toastTickMsg struct{}

// ErrorRelay carries poll failures from the poll goroutine into the UI loop.
type ErrorRelay struct {
	ch chan error
}

func NewErrorRelay() *ErrorRelay {
	return &ErrorRelay{ch: make(chan error, 8)}
}

// Report never blocks; failures beyond the buffer are dropped since the
// next poll reports again.
func (r *ErrorRelay) Report(err error) {
	if r == nil || err == nil {
		return
	}
	select {
	case r.ch <- err:
	default:
	}
}

func waitForStoreChange(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func waitForPollError(relay *ErrorRelay) tea.Cmd {
	if relay == nil {
		return nil
	}
	return func() tea.Msg {
		return pollErrorMsg{err: <-relay.ch}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(time.Time) tea.Msg { return toastTickMsg{} })
}

func transferCmd(ctx context.Context, ctrl *monitor.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: "transfer", id: id, err: ctrl.Transfer(ctx, id)}
	}
}

func closeCmd(ctx context.Context, ctrl *monitor.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: "close", id: id, err: ctrl.Close(ctx, id)}
	}
}

func deleteCmd(ctx context.Context, ctrl *monitor.Controller, confirm monitor.DeleteConfirmation) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: "delete", id: confirm.SessionID, err: ctrl.Delete(ctx, confirm)}
	}
}

func sendCmd(ctx context.Context, ctrl *monitor.Controller, id, text string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: "send", id: id, err: ctrl.SendMessage(ctx, id, text)}
	}
}
