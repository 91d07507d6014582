package stream

import (
	"errors"
	"strings"
)

// ErrFrozen is returned when a delta arrives after the turn was frozen.
var ErrFrozen = errors.New("stream: turn is frozen")

// Message is one role/content pair of a conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is the in-memory conversation exchanged in one request.  While a
// reply streams in, the last message grows monotonically; Freeze ends that.
type Turn struct {
	Messages []Message
	acc      strings.Builder
	frozen   bool
}

// NewTurn starts a turn from prior messages.
func NewTurn(history []Message) *Turn {
	msgs := make([]Message, len(history))
	copy(msgs, history)
	return &Turn{Messages: msgs}
}

// ApplyDelta appends d to the running assistant text and mirrors it into the
// last message when that message is an assistant message, or appends a new
// assistant message otherwise.
func (t *Turn) ApplyDelta(d string) error {
	if t.frozen {
		return ErrFrozen
	}
	if d == "" {
		return nil
	}
	t.acc.WriteString(d)
	if n := len(t.Messages); n > 0 && t.Messages[n-1].Role == "assistant" {
		t.Messages[n-1].Content = t.acc.String()
		return nil
	}
	t.Messages = append(t.Messages, Message{Role: "assistant", Content: t.acc.String()})
	return nil
}

// Freeze stops further mutation and returns the final assistant text.
func (t *Turn) Freeze() string {
	t.frozen = true
	return t.acc.String()
}
