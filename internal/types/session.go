package types

import "strings"

type SessionStatus string

const (
	SessionStatusActive      SessionStatus = "active"
	SessionStatusTransferred SessionStatus = "transferred"
	SessionStatusClosed      SessionStatus = "closed"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderBot   Sender = "bot"
	SenderAgent Sender = "agent"
)

// Session is one conversation thread with a remote contact. The remote
// service is the source of truth for every field.
type Session struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id,omitempty"`
	PhoneNumber        string        `json:"phone_number"`
	UserName           string        `json:"user_name"`
	Status             SessionStatus `json:"status"`
	TransferredToHuman bool          `json:"transferred_to_human"`
	Messages           []Message     `json:"messages"`
	StartedAt          Timestamp     `json:"started_at"`
	LastMessageAt      Timestamp     `json:"last_message_at"`
}

type Message struct {
	ID          string    `json:"id,omitempty"`
	Sender      Sender    `json:"sender"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type,omitempty"`
	Timestamp   Timestamp `json:"timestamp"`
}

// ActivityAt is the instant used for list ordering: the last message time,
// or the start time when no message time was reported.
func (s *Session) ActivityAt() Timestamp {
	if s == nil {
		return Timestamp{}
	}
	if !s.LastMessageAt.IsZero() {
		return s.LastMessageAt
	}
	return s.StartedAt
}

func (s *Session) LastMessage() (Message, bool) {
	if s == nil || len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

func (s *Session) IsClosed() bool {
	return s != nil && s.Status == SessionStatusClosed
}

func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if name := strings.TrimSpace(s.UserName); name != "" {
		return name
	}
	return strings.TrimSpace(s.PhoneNumber)
}

// Clone returns a deep copy so callers can hand sessions across goroutines
// without sharing the message slice.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Messages != nil {
		out.Messages = append([]Message(nil), s.Messages...)
	}
	return &out
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusActive, SessionStatusTransferred, SessionStatusClosed:
		return true
	default:
		return false
	}
}
