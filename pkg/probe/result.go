package probe

import (
	"fmt"
	"time"

	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/modeladapter/usage"
)

// Outcome classifies a probe.
type Outcome int

const (
	// OutcomeAvailable means the endpoint answered the test request.
	OutcomeAvailable Outcome = iota
	// OutcomeNotFound means the endpoint reported the model does not exist.
	OutcomeNotFound
	// OutcomeError covers every other failure: auth, rate limits, transport, 5xx.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAvailable:
		return "available"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of one probe. Text is set for OutcomeAvailable and
// Message for OutcomeError; Model is always set.
type Result struct {
	Outcome Outcome
	Model   string
	Text    string
	Message string

	RequestID string
	Latency   time.Duration
	Usage     usage.TokenCount
	// RateLimit is the quota the service reported on a successful call, if any.
	RateLimit *modeladapter.RateLimitInfo
}

// Available builds a successful result.
func Available(model, text string) Result {
	return Result{Outcome: OutcomeAvailable, Model: model, Text: text}
}

// NotFound builds a result for a model the endpoint does not know.
func NotFound(model string) Result {
	return Result{Outcome: OutcomeNotFound, Model: model}
}

// Failed builds an error result. An empty msg is replaced so callers can
// always show something.
func Failed(model, msg string) Result {
	if msg == "" {
		msg = "unknown error"
	}
	return Result{Outcome: OutcomeError, Model: model, Message: msg}
}

// OK reports whether the model is available.
func (r Result) OK() bool { return r.Outcome == OutcomeAvailable }

// Summary is a one-line human-readable description of the result.
func (r Result) Summary() string {
	switch r.Outcome {
	case OutcomeAvailable:
		return fmt.Sprintf("Model '%s' is available.", r.Model)
	case OutcomeNotFound:
		return fmt.Sprintf("Model '%s' does not exist.", r.Model)
	default:
		return r.Message
	}
}
