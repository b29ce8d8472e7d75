package monitor

import (
	"context"
	"testing"
	"time"

	"console/internal/client"
	"console/internal/types"
)

func newControllerFixture(sessions ...*types.Session) (*Controller, *Store, *fakeAPI, *countingResync) {
	store := NewStore()
	store.Apply(Snapshot{Sessions: sessions})
	api := &fakeAPI{}
	resync := &countingResync{}
	return NewController(api, store, NewDrafts(), resync, nil), store, api, resync
}

func TestSendRejectedUntilTransferred(t *testing.T) {
	ctrl, _, api, resync := newControllerFixture(newSession("1", types.SessionStatusActive, 1))
	err := ctrl.SendMessage(context.Background(), "1", "hello")
	if !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	if api.commandCount() != 0 || resync.Count() != 0 {
		t.Fatalf("expected no network call or resync")
	}
}

func TestTransferRejectedWhenAlreadyTransferred(t *testing.T) {
	ctrl, _, api, _ := newControllerFixture(newSession("1", types.SessionStatusTransferred, 1))
	err := ctrl.Transfer(context.Background(), "1")
	if !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	if api.commandCount() != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestSendRejectsBlankTextAndClosedSessions(t *testing.T) {
	closed := newSession("2", types.SessionStatusClosed, 1)
	closed.TransferredToHuman = true
	ctrl, _, api, _ := newControllerFixture(newSession("1", types.SessionStatusTransferred, 1), closed)
	if err := ctrl.SendMessage(context.Background(), "1", "  \n"); !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected blank text rejection, got %v", err)
	}
	if err := ctrl.SendMessage(context.Background(), "2", "hi"); !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected closed session rejection, got %v", err)
	}
	if api.commandCount() != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestTransferSuccessTriggersResyncWithoutLocalMutation(t *testing.T) {
	ctrl, store, api, resync := newControllerFixture(newSession("1", types.SessionStatusActive, 1))
	if err := ctrl.Transfer(context.Background(), "1"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if api.commandCount() != 1 || resync.Count() != 1 {
		t.Fatalf("expected one command and one resync, got %d and %d", api.commandCount(), resync.Count())
	}
	session, _ := store.Session("1")
	if session.Status != types.SessionStatusActive {
		t.Fatalf("expected local status untouched until resync, got %s", session.Status)
	}
}

func TestCommandFailureLeavesStateUnchanged(t *testing.T) {
	ctrl, store, api, resync := newControllerFixture(newSession("1", types.SessionStatusActive, 1))
	api.cmdErr = &client.Error{Kind: client.KindRemoteUnavailable, Op: "close"}
	focus := NewFocusTracker(store)
	if err := focus.Select("1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	err := ctrl.Close(context.Background(), "1")
	if !client.IsKind(err, client.KindRemoteUnavailable) {
		t.Fatalf("expected remote unavailable, got %v", err)
	}
	if focus.ID() != "1" || resync.Count() != 0 {
		t.Fatalf("expected focus kept and no resync after failure")
	}
}

func TestCloseClearsFocusOfClosedSession(t *testing.T) {
	ctrl, store, _, resync := newControllerFixture(newSession("1", types.SessionStatusActive, 1), newSession("2", types.SessionStatusActive, 2))
	focus := NewFocusTracker(store)
	_ = focus.Select("1")
	if err := ctrl.Close(context.Background(), "2"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if focus.ID() != "1" {
		t.Fatalf("closing another session must not move focus")
	}
	if err := ctrl.Close(context.Background(), "1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if focus.ID() != "" {
		t.Fatalf("expected focus cleared")
	}
	if resync.Count() != 2 {
		t.Fatalf("expected a resync per close, got %d", resync.Count())
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctrl, _, api, _ := newControllerFixture(newSession("1", types.SessionStatusActive, 1))
	err := ctrl.Delete(context.Background(), DeleteConfirmation{SessionID: "1"})
	if !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected confirmation required, got %v", err)
	}
	confirm, err := ctrl.RequestDelete("1")
	if err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if confirm.Token == "" || confirm.Label != "user 1" {
		t.Fatalf("unexpected confirmation: %#v", confirm)
	}
	forged := confirm
	forged.Token = "guess"
	if err := ctrl.Delete(context.Background(), forged); !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected forged token rejection, got %v", err)
	}
	if api.commandCount() != 0 {
		t.Fatalf("expected no network call before confirmation")
	}
}

func TestDeleteConfirmationIsSingleUseAndExpires(t *testing.T) {
	ctrl, _, api, _ := newControllerFixture(newSession("1", types.SessionStatusActive, 1), newSession("2", types.SessionStatusActive, 2))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ctrl.now = func() time.Time { return now }

	confirm, _ := ctrl.RequestDelete("1")
	if err := ctrl.Delete(context.Background(), confirm); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ctrl.Delete(context.Background(), confirm); !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected reused confirmation to be rejected, got %v", err)
	}

	stale, _ := ctrl.RequestDelete("2")
	now = now.Add(deleteConfirmationTTL + time.Second)
	if err := ctrl.Delete(context.Background(), stale); !client.IsKind(err, client.KindValidationRejected) {
		t.Fatalf("expected expired confirmation to be rejected, got %v", err)
	}
	if api.commandCount() != 1 {
		t.Fatalf("expected exactly one delete call, got %d", api.commandCount())
	}
}

func TestDeleteClearsFocusImmediately(t *testing.T) {
	ctrl, store, _, resync := newControllerFixture(newSession("1", types.SessionStatusActive, 1), newSession("2", types.SessionStatusActive, 2))
	focus := NewFocusTracker(store)
	_ = focus.Select("1")
	ctrl.drafts.Set("1", "pending reply")

	confirm, _ := ctrl.RequestDelete("1")
	if err := ctrl.Delete(context.Background(), confirm); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if focus.ID() != "" {
		t.Fatalf("expected focus cleared before the next poll")
	}
	if _, ok := store.Session("1"); ok {
		t.Fatalf("expected session removed locally")
	}
	if ctrl.drafts.Get("1") != "" {
		t.Fatalf("expected draft discarded")
	}
	if resync.Count() != 1 {
		t.Fatalf("expected resync")
	}
}

func TestSendClearsDraftAndDoesNotAppend(t *testing.T) {
	ctrl, store, api, resync := newControllerFixture(newSession("1", types.SessionStatusTransferred, 1))
	ctrl.drafts.Set("1", "on my way")
	if err := ctrl.SendMessage(context.Background(), "1", "  on my way "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0] != "551: on my way" {
		t.Fatalf("unexpected sends: %v", api.sent)
	}
	if ctrl.drafts.Get("1") != "" {
		t.Fatalf("expected draft cleared")
	}
	session, _ := store.Session("1")
	if len(session.Messages) != 0 {
		t.Fatalf("expected no local append, got %d messages", len(session.Messages))
	}
	if resync.Count() != 1 {
		t.Fatalf("expected resync")
	}
}

func TestSendFailureKeepsDraft(t *testing.T) {
	ctrl, _, api, _ := newControllerFixture(newSession("1", types.SessionStatusTransferred, 1))
	api.cmdErr = &client.Error{Kind: client.KindRemoteUnavailable}
	ctrl.drafts.Set("1", "retry me")
	if err := ctrl.SendMessage(context.Background(), "1", "retry me"); err == nil {
		t.Fatalf("expected failure")
	}
	if ctrl.drafts.Get("1") != "retry me" {
		t.Fatalf("expected draft kept for manual retry")
	}
}

func TestAllowedActions(t *testing.T) {
	cases := []struct {
		name    string
		session *types.Session
		want    Actions
	}{
		{name: "missing", want: Actions{}},
		{name: "active", session: newSession("a", types.SessionStatusActive, 1), want: Actions{Transfer: true, Close: true, Delete: true}},
		{name: "transferred", session: newSession("t", types.SessionStatusTransferred, 1), want: Actions{Close: true, Delete: true, Send: true}},
		{name: "closed", session: newSession("c", types.SessionStatusClosed, 1), want: Actions{Delete: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AllowedActions(tc.session); got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}
