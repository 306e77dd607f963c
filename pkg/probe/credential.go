package probe

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultBaseURL is the Nebius AI Studio OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.studio.nebius.com/v1"
	// EnvAPIKey is the environment variable holding the credential.
	EnvAPIKey = "NEBIUS_API_KEY"
)

var (
	// ErrMissingCredential is returned when no API key is configured. It is
	// always detected before any network activity.
	ErrMissingCredential = errors.New("probe: missing credential")
	// ErrEmptyModel is returned when the model identifier is blank.
	ErrEmptyModel = errors.New("probe: empty model identifier")
)

// LookupFunc reads an environment variable; os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ResolveCredential reads the credential from env via lookup. Blank values
// count as missing.
func ResolveCredential(lookup LookupFunc, env string) (string, error) {
	if env == "" {
		env = EnvAPIKey
	}

	v, _ := lookup(env)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s environment variable is not set", ErrMissingCredential, env)
	}

	return v, nil
}
