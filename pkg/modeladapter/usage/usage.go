// Package usage records token counts reported by chat-completion endpoints.
package usage

import (
	"fmt"
	"sync"
)

// TokenCount holds prompt and completion token counts for a single call.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// IsZero reports whether the provider reported no usage at all.
func (tc TokenCount) IsZero() bool {
	return tc.InputTokens == 0 && tc.OutputTokens == 0
}

// String renders the count as "in/out tokens".
func (tc TokenCount) String() string {
	return fmt.Sprintf("%d in / %d out tokens", tc.InputTokens, tc.OutputTokens)
}

// Tracker accumulates token usage across calls. The zero value is ready to
// use and it is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	last  TokenCount
	total TokenCount
	calls int
}

// Add records a token count entry.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = tc
	t.total.InputTokens += tc.InputTokens
	t.total.OutputTokens += tc.OutputTokens
	t.calls++
}

// Last returns the most recent token count entry.
// The bool is false when nothing has been recorded.
func (t *Tracker) Last() (TokenCount, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last, t.calls > 0
}

// Total returns the aggregate token count across all entries.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.calls
}
