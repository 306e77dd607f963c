// Package message defines the Message type sent to and received from
// chat-completion endpoints.
package message

import (
	"strings"

	"github.com/germanamz/modelprobe/pkg/chats/role"
)

// Message is a single text message in a conversation.
// It is a value type that copies cheaply.
type Message struct {
	Role role.Role
	Text string
	// FinishReason is set on replies when the provider reports one
	// (e.g. "stop", "length").
	FinishReason string
}

// New creates a message with the given role and text.
func New(r role.Role, text string) Message {
	return Message{Role: r, Text: text}
}

// System is shorthand for New(role.System, text).
func System(text string) Message { return New(role.System, text) }

// User is shorthand for New(role.User, text).
func User(text string) Message { return New(role.User, text) }

// Assistant is shorthand for New(role.Assistant, text).
func Assistant(text string) Message { return New(role.Assistant, text) }

// Truncated reports whether the provider stopped generating because the
// output token limit was reached.
func (m Message) Truncated() bool {
	return m.FinishReason == "length"
}

// Trimmed returns the message text without surrounding whitespace.
func (m Message) Trimmed() string {
	return strings.TrimSpace(m.Text)
}
