package modeladapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxErrorBody caps how much of an error response is kept in memory.
const maxErrorBody = 64 << 10

// errorMessagePaths are the JSON locations OpenAI-compatible services use
// for a human-readable error message, in lookup order.
var errorMessagePaths = []string{"error.message", "detail", "message", "error"}

// StatusError is returned when the API responds with a non-2xx status other
// than 429.
type StatusError struct {
	StatusCode int
	Body       string
	// Message is the service's own error text extracted from Body, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimitError is returned when the API responds with HTTP 429 (Too Many Requests).
// It carries an optional RetryAfter duration parsed from the Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// ErrorMessage extracts the service's error text from a JSON error body.
// It returns "" when body is not JSON or carries no known message field.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	for _, path := range errorMessagePaths {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}

	return ""
}

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// checkStatus converts a non-2xx response into a typed error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(raw))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       body,
		}
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Message:    ErrorMessage(raw),
	}
}

// ErrListingUnsupported is returned by ListModels on wrappers whose inner
// completer cannot list models.
var ErrListingUnsupported = errors.New("modeladapter: model listing not supported")
