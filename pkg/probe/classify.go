package probe

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/providers/openaisdk"
)

// notFoundMarkers are matched case-insensitively against error text. The
// upstream service documents no stable error code for unknown models, so this
// is a best-effort heuristic.
var notFoundMarkers = []string{
	"404",
	"does not exist",
	"not found",
	"model_not_found",
}

// Classify maps a completion error to an Outcome. A nil error is
// OutcomeAvailable.
//
// HTTP failures are judged by status code and the service's own error text
// only; transport failures are never NotFound, since their text embeds the
// request URL and could match a marker by accident. Auth failures are never
// NotFound either: "API key not found" is a credential problem.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeAvailable
	}

	var se *modeladapter.StatusError
	if errors.As(err, &se) {
		return classifyHTTP(se.StatusCode, se.Message, se.Body)
	}

	if status, text, ok := openaisdk.Describe(err); ok {
		return classifyHTTP(status, text)
	}

	var rl *modeladapter.RateLimitError
	if errors.As(err, &rl) {
		return OutcomeError
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return OutcomeError
	}

	if mentionsNotFound(err.Error()) {
		return OutcomeNotFound
	}

	return OutcomeError
}

func classifyHTTP(status int, texts ...string) Outcome {
	switch status {
	case http.StatusNotFound:
		return OutcomeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return OutcomeError
	}
	for _, t := range texts {
		if mentionsNotFound(t) {
			return OutcomeNotFound
		}
	}
	return OutcomeError
}

func mentionsNotFound(text string) bool {
	text = strings.ToLower(text)
	for _, m := range notFoundMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
