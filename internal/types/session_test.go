package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSessionDecodesNaiveAndZonedTimestamps(t *testing.T) {
	payload := `{
		"id": "c1",
		"phone_number": "5511999990000",
		"user_name": "Ana",
		"status": "transferred",
		"transferred_to_human": true,
		"messages": [{"sender": "user", "content": "oi", "timestamp": "2024-05-01T12:30:00.123456"}],
		"started_at": "2024-05-01T12:00:00+00:00",
		"last_message_at": null
	}`
	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if session.Status != SessionStatusTransferred || !session.TransferredToHuman {
		t.Fatalf("unexpected status fields: %+v", session)
	}
	want := time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC)
	if !session.Messages[0].Timestamp.Equal(want) {
		t.Fatalf("expected naive timestamp as UTC %v, got %v", want, session.Messages[0].Timestamp.Time)
	}
	if !session.LastMessageAt.IsZero() {
		t.Fatalf("expected null last_message_at to decode as zero")
	}
	if !session.ActivityAt().Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected activity to fall back to started_at, got %v", session.ActivityAt().Time)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
	if err := json.Unmarshal([]byte(`42`), &ts); err == nil {
		t.Fatalf("expected error for numeric timestamp")
	}
}

func TestSessionCloneDoesNotShareMessages(t *testing.T) {
	original := &Session{ID: "c1", Messages: []Message{{Sender: SenderBot, Content: "hello"}}}
	clone := original.Clone()
	clone.Messages[0].Content = "changed"
	if original.Messages[0].Content != "hello" {
		t.Fatalf("clone shares message storage")
	}
}

func TestParseStatusFilter(t *testing.T) {
	cases := []struct {
		raw     string
		want    StatusFilter
		wantErr bool
	}{
		{raw: "", want: StatusFilterAll},
		{raw: "ALL", want: StatusFilterAll},
		{raw: " active ", want: StatusFilter(SessionStatusActive)},
		{raw: "transferred", want: StatusFilter(SessionStatusTransferred)},
		{raw: "closed", want: StatusFilter(SessionStatusClosed)},
		{raw: "pending", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseStatusFilter(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestStatusFilterStatusAndNext(t *testing.T) {
	if StatusFilterAll.Status() != "" {
		t.Fatalf("expected no remote status for all")
	}
	if StatusFilter("").Next() != StatusFilter(SessionStatusActive) {
		t.Fatalf("expected empty filter to cycle to active")
	}
	if StatusFilter(SessionStatusClosed).Next() != StatusFilterAll {
		t.Fatalf("expected closed to wrap to all")
	}
}
