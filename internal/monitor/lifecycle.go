package monitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"console/internal/client"
	"console/internal/logging"
	"console/internal/types"
)

const deleteConfirmationTTL = 2 * time.Minute

type CommandAPI interface {
	TransferConversation(ctx context.Context, id string) error
	CloseConversation(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, id string) error
	SendMessage(ctx context.Context, phoneNumber, text string) error
}

type Resyncer interface {
	Trigger()
}

// Actions reports which commands the current state of a session permits.
type Actions struct {
	Transfer bool
	Close    bool
	Delete   bool
	Send     bool
}

// AllowedActions gates commands on the last reconciled session state.
func AllowedActions(session *types.Session) Actions {
	if session == nil {
		return Actions{}
	}
	return Actions{
		Transfer: session.Status == types.SessionStatusActive,
		Close:    session.Status != types.SessionStatusClosed,
		Delete:   true,
		Send:     session.TransferredToHuman && session.Status != types.SessionStatusClosed,
	}
}

// DeleteConfirmation is handed out by RequestDelete and must be passed back
// to Delete. Each confirmation is single-use and expires.
type DeleteConfirmation struct {
	SessionID string
	Label     string
	Token     string
	ExpiresAt time.Time
}

func (c DeleteConfirmation) Prompt() string {
	return "Delete conversation with " + c.Label + "? This cannot be undone."
}

// Controller issues lifecycle and messaging commands. Commands never touch
// local session data speculatively; on success they request a resync.
type Controller struct {
	api    CommandAPI
	store  *Store
	drafts *Drafts
	resync Resyncer
	logger logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]DeleteConfirmation
}

func NewController(api CommandAPI, store *Store, drafts *Drafts, resync Resyncer, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	if drafts == nil {
		drafts = NewDrafts()
	}
	return &Controller{
		api:     api,
		store:   store,
		drafts:  drafts,
		resync:  resync,
		logger:  logger.With(logging.F("component", "lifecycle")),
		now:     time.Now,
		pending: map[string]DeleteConfirmation{},
	}
}

func (c *Controller) Allowed(id string) Actions {
	session, _ := c.store.Session(id)
	return AllowedActions(session)
}

func (c *Controller) Transfer(ctx context.Context, id string) error {
	const op = "transfer"
	session, err := c.lookup(op, id)
	if err != nil {
		return err
	}
	if !AllowedActions(session).Transfer {
		return client.Rejected(op, "only active conversations can be transferred (status is "+string(session.Status)+")")
	}
	if err := c.api.TransferConversation(ctx, session.ID); err != nil {
		return c.failed(op, session.ID, err)
	}
	c.succeeded(op, session.ID)
	return nil
}

func (c *Controller) Close(ctx context.Context, id string) error {
	const op = "close"
	session, err := c.lookup(op, id)
	if err != nil {
		return err
	}
	if !AllowedActions(session).Close {
		return client.Rejected(op, "conversation is already closed")
	}
	if err := c.api.CloseConversation(ctx, session.ID); err != nil {
		return c.failed(op, session.ID, err)
	}
	c.store.clearFocus(session.ID)
	c.succeeded(op, session.ID)
	return nil
}

// RequestDelete returns the confirmation Delete requires.
func (c *Controller) RequestDelete(id string) (DeleteConfirmation, error) {
	session, err := c.lookup("delete", id)
	if err != nil {
		return DeleteConfirmation{}, err
	}
	confirm := DeleteConfirmation{
		SessionID: session.ID,
		Label:     session.DisplayName(),
		Token:     uuid.NewString(),
		ExpiresAt: c.now().Add(deleteConfirmationTTL),
	}
	if confirm.Label == "" {
		confirm.Label = session.ID
	}
	c.mu.Lock()
	c.pending[session.ID] = confirm
	c.mu.Unlock()
	return confirm, nil
}

// CancelDelete discards a pending confirmation.
func (c *Controller) CancelDelete(id string) {
	c.mu.Lock()
	delete(c.pending, strings.TrimSpace(id))
	c.mu.Unlock()
}

func (c *Controller) Delete(ctx context.Context, confirm DeleteConfirmation) error {
	const op = "delete"
	if err := c.consumeConfirmation(confirm); err != nil {
		return err
	}
	if err := c.api.DeleteConversation(ctx, confirm.SessionID); err != nil {
		return c.failed(op, confirm.SessionID, err)
	}
	c.store.Remove(confirm.SessionID)
	c.drafts.Clear(confirm.SessionID)
	c.succeeded(op, confirm.SessionID)
	return nil
}

// SendMessage sends text as the human operator. The message is not added
// locally; it appears once the remote reports it.
func (c *Controller) SendMessage(ctx context.Context, id, text string) error {
	const op = "send message"
	text = strings.TrimSpace(text)
	if text == "" {
		return client.Rejected(op, "message is empty")
	}
	session, err := c.lookup(op, id)
	if err != nil {
		return err
	}
	if session.Status == types.SessionStatusClosed {
		return client.Rejected(op, "conversation is closed")
	}
	if !session.TransferredToHuman {
		return client.Rejected(op, "conversation has not been transferred to a human")
	}
	if err := c.api.SendMessage(ctx, session.PhoneNumber, text); err != nil {
		return c.failed(op, session.ID, err)
	}
	c.drafts.Clear(session.ID)
	c.succeeded(op, session.ID)
	return nil
}

func (c *Controller) lookup(op, id string) (*types.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, client.Rejected(op, "conversation id is required")
	}
	session, ok := c.store.Session(id)
	if !ok {
		return nil, client.Rejected(op, "conversation "+id+" is not in the current list")
	}
	return session, nil
}

func (c *Controller) consumeConfirmation(confirm DeleteConfirmation) error {
	id := strings.TrimSpace(confirm.SessionID)
	if id == "" {
		return client.Rejected("delete", "conversation id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, ok := c.pending[id]
	if !ok || confirm.Token == "" || pending.Token != confirm.Token {
		return client.Rejected("delete", "delete requires confirmation")
	}
	delete(c.pending, id)
	if c.now().After(pending.ExpiresAt) {
		return client.Rejected("delete", "delete confirmation expired")
	}
	return nil
}

func (c *Controller) failed(op, id string, err error) error {
	c.logger.Warn("command failed",
		logging.F("op", op),
		logging.F("id", id),
		logging.F("kind", client.KindOf(err)),
		logging.Err(err),
	)
	return err
}

func (c *Controller) succeeded(op, id string) {
	c.logger.Info("command applied", logging.F("op", op), logging.F("id", id))
	if c.resync != nil {
		c.resync.Trigger()
	}
}
