// Package chatlog holds the ordered message list shown in a conversation.
package chatlog

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Label is the speaker prefix printed before a message.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "Vous"
	case RoleAssistant:
		return "Rafiq-AI"
	default:
		return ""
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

type Message struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	Text        string    `json:"text"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Generation  uint64    `json:"generation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Log is append-only except for placeholder removal.
type Log []Message

var now = func() time.Time { return time.Now().UTC() }

func newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: now(),
	}
}

// AddMessage appends a message and returns it.
func (l *Log) AddMessage(role Role, text string) Message {
	m := newMessage(role, text)
	*l = append(*l, m)
	return m
}

// AddPlaceholder appends a system "thinking" message bound to a chat generation.
// Any older placeholder is dropped first so the log never shows two.
func (l *Log) AddPlaceholder(text string, generation uint64) Message {
	for l.RemoveLastSystemThinking() {
	}

	m := newMessage(RoleSystem, text)
	m.Placeholder = true
	m.Generation = generation
	*l = append(*l, m)
	return m
}

// RemoveLastSystemThinking removes the most recently appended placeholder.
// It reports whether one was found.
func (l *Log) RemoveLastSystemThinking() bool {
	msgs := *l
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Placeholder {
			*l = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

// Placeholder returns the pending placeholder, if any.
func (l Log) Placeholder() (Message, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Placeholder {
			return l[i], true
		}
	}
	return Message{}, false
}

// Transcript returns the messages without placeholders.
func (l Log) Transcript() []Message {
	out := make([]Message, 0, len(l))
	for _, m := range l {
		if !m.Placeholder {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the newest message.
func (l Log) Last() (Message, bool) {
	if len(l) == 0 {
		return Message{}, false
	}
	return l[len(l)-1], true
}
