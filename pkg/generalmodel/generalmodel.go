// Package generalmodel wraps a chat completer with two conveniences: free
// text generation from an instruction, and parsing text into a typed value
// through a JSON Schema derived from that type.
package generalmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("generalmodel: empty reply")

// Model sends instruction/text pairs to a completer. Sampling settings such
// as temperature belong to the completer.
type Model struct {
	completer modeladapter.Completer
}

// New creates a Model.
func New(c modeladapter.Completer) *Model {
	return &Model{completer: c}
}

// Generate sends instruction as the system message and text as the user
// message, returning the reply text.
func (m *Model) Generate(ctx context.Context, instruction, text string) (string, error) {
	msgs := make([]message.Message, 0, 2)
	if strings.TrimSpace(instruction) != "" {
		msgs = append(msgs, message.System(instruction))
	}
	msgs = append(msgs, message.User(text))

	reply, err := m.completer.Complete(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generalmodel: generate: %w", err)
	}

	out := reply.Trimmed()
	if out == "" {
		return "", ErrEmptyReply
	}

	return out, nil
}

const parseInstruction = `Extract the requested information from the user's text.
Respond with a single JSON value that validates against this JSON Schema and nothing else:

%s`

// Parse asks the model to turn text into a T. The JSON Schema for T is
// derived from its Go type, so struct fields need json tags.
func Parse[T any](ctx context.Context, m *Model, text string) (T, error) {
	var zero T

	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return zero, fmt.Errorf("generalmodel: parse: schema: %w", err)
	}

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return zero, fmt.Errorf("generalmodel: parse: schema: %w", err)
	}

	reply, err := m.Generate(ctx, fmt.Sprintf(parseInstruction, raw), text)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), &out); err != nil {
		return zero, fmt.Errorf("generalmodel: parse: decode reply: %w", err)
	}

	return out, nil
}

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// from s, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
