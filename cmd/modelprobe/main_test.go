package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/germanamz/modelprobe/pkg/config"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endpoint is a fake OpenAI-compatible service that serves a fixed set of
// models and counts every request it receives.
type endpoint struct {
	url       string
	reply     string
	served    []string
	listFail  bool
	rateLimit bool
	calls     atomic.Int32

	mu          sync.Mutex
	temperature *float64
}

// lastTemperature returns the temperature of the last chat request, nil when
// the request carried none.
func (e *endpoint) lastTemperature() *float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.temperature
}

func newEndpoint(t *testing.T, served ...string) *endpoint {
	t.Helper()

	e := &endpoint{reply: "Hello", served: served}
	srv := httptest.NewServer(http.HandlerFunc(e.serveHTTP))
	t.Cleanup(srv.Close)
	e.url = srv.URL + "/v1"

	return e
}

func (e *endpoint) serveHTTP(w http.ResponseWriter, r *http.Request) {
	e.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/models":
		if e.listFail {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		data := make([]map[string]any, 0, len(e.served))
		for _, id := range e.served {
			data = append(data, map[string]any{"id": id, "object": "model", "created": 1700000000, "owned_by": "system"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})

	case r.Method == http.MethodPost && r.URL.Path == "/v1/chat/completions":
		var body struct {
			Model       string   `json:"model"`
			Temperature *float64 `json:"temperature"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		e.mu.Lock()
		e.temperature = body.Temperature
		e.mu.Unlock()

		for _, id := range e.served {
			if id == body.Model {
				if e.rateLimit {
					w.Header().Set("x-ratelimit-remaining-requests", "99")
					w.Header().Set("x-ratelimit-remaining-tokens", "4000")
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"id":      "chatcmpl-1",
					"object":  "chat.completion",
					"created": 1700000000,
					"model":   id,
					"choices": []map[string]any{{
						"index":         0,
						"message":       map[string]any{"role": "assistant", "content": e.reply},
						"finish_reason": "stop",
					}},
					"usage": map[string]any{"prompt_tokens": 17, "completion_tokens": 2, "total_tokens": 19},
				})
				return
			}
		}

		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, `{"error":{"message":"The model %s does not exist.","type":"invalid_request_error","code":"model_not_found"}}`, body.Model)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeConfig(t *testing.T, kind, baseURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "modelprobe.yaml")
	content := fmt.Sprintf("provider:\n  kind: %s\n  base_url: %s\nlog:\n  level: error\n", kind, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func withKey(key string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if name == "NEBIUS_API_KEY" && key != "" {
			return key, true
		}
		return "", false
	}
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, lookup func(string) (string, bool), args ...string) cliResult {
	t.Helper()

	envFile := filepath.Join(t.TempDir(), "missing.env")
	full := append([]string{"--env", envFile}, args...)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), full, lookup, strings.NewReader(""), &stdout, &stderr)

	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestProbe_MissingCredentialMakesNoCall(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey(""), "--config", cfg, "probe", "m")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "NEBIUS_API_KEY environment variable is not set")
	assert.Zero(t, e.calls.Load())
}

func TestProbe_Usage(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	for _, args := range [][]string{{"probe"}, {"probe", "a", "b"}} {
		res := runCLI(t, withKey("k"), append([]string{"--config", cfg}, args...)...)
		assert.Equal(t, exitUsage, res.code, "args %v", args)
		assert.Contains(t, res.stderr, "Usage: modelprobe probe")
	}
	assert.Zero(t, e.calls.Load())
}

func TestProbe_Outcomes(t *testing.T) {
	for _, kind := range []string{config.KindOpenAI, config.KindOpenAISDK} {
		t.Run(kind, func(t *testing.T) {
			e := newEndpoint(t, "openai/gpt-oss-120b")
			cfg := writeConfig(t, kind, e.url)

			res := runCLI(t, withKey("k"), "--config", cfg, "probe", "openai/gpt-oss-120b")
			assert.Equal(t, exitOK, res.code, res.stderr)
			assert.Contains(t, res.stdout, "Testing model: openai/gpt-oss-120b")
			assert.Contains(t, res.stdout, "Model 'openai/gpt-oss-120b' is available.")
			assert.Contains(t, res.stdout, "Response: Hello")

			res = runCLI(t, withKey("k"), "--config", cfg, "probe", "--suggest", "gpt-oss-120b")
			assert.Equal(t, exitNotFound, res.code, res.stderr)
			assert.Contains(t, res.stdout, "Model 'gpt-oss-120b' does not exist.")
			assert.Contains(t, res.stdout, "studio.nebius.com")
			assert.Contains(t, res.stdout, "Did you mean:")
			assert.Contains(t, res.stdout, "  - openai/gpt-oss-120b")
		})
	}
}

func TestNotFound_SingleRequestByDefault(t *testing.T) {
	e := newEndpoint(t, "openai/gpt-oss-120b")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "probe", "gpt-oss-120b")

	assert.Equal(t, exitNotFound, res.code)
	assert.NotContains(t, res.stdout, "Did you mean:")
	assert.Equal(t, int32(1), e.calls.Load())
}

func TestProbe_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/v1"
	srv.Close()

	cfg := writeConfig(t, config.KindOpenAI, url)

	res := runCLI(t, withKey("k"), "--config", cfg, "probe", "m")

	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stdout, "❌ Error:")
	assert.NotContains(t, res.stdout, "is available")
}

func TestProbe_Verbose(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "--verbose", "probe", "m")

	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "request ")
	assert.Contains(t, res.stdout, "17 in / 2 out tokens")
	assert.Contains(t, res.stderr, "probe finished")
	assert.NotContains(t, res.stdout, "requests /")
}

func TestVerbose_RateLimit(t *testing.T) {
	for _, kind := range []string{config.KindOpenAI, config.KindOpenAISDK} {
		t.Run(kind, func(t *testing.T) {
			e := newEndpoint(t, "m")
			e.rateLimit = true
			cfg := writeConfig(t, kind, e.url)

			res := runCLI(t, withKey("k"), "--config", cfg, "--verbose", "probe", "m")

			require.Equal(t, exitOK, res.code, res.stderr)
			assert.Contains(t, res.stdout, "99 requests / 4000 tokens left")
		})
	}
}

func TestModels(t *testing.T) {
	e := newEndpoint(t, "meta-llama/Meta-Llama-3-70B-Instruct", "deepseek-ai/DeepSeek-R1-0528")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "models")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Available models:")
	assert.Contains(t, res.stdout, "OWNED BY")

	deepseek := strings.Index(res.stdout, "deepseek-ai/DeepSeek-R1-0528")
	llama := strings.Index(res.stdout, "meta-llama/Meta-Llama-3-70B-Instruct")
	require.Positive(t, deepseek)
	assert.Less(t, deepseek, llama)
}

func TestModels_ListingUnavailable(t *testing.T) {
	e := newEndpoint(t, "m")
	e.listFail = true
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "models")

	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stdout, "direct model listing not available")
	assert.Contains(t, res.stdout, "studio.nebius.com")
	assert.Contains(t, res.stdout, "DeepSeek-R1-0528")
}

func TestModels_PickNeedsTerminal(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "models", "--pick")

	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, errNotInteractive.Error())
}

func TestGenerate(t *testing.T) {
	e := newEndpoint(t, "m")
	e.reply = "Bonjour"
	cfg := writeConfig(t, config.KindOpenAISDK, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "generate", "--model", "m", "--instruction", "Translate to French.", "Hello")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "Bonjour\n", res.stdout)
	require.NotNil(t, e.lastTemperature())
	assert.Zero(t, *e.lastTemperature())
}

func TestGenerate_Temperature(t *testing.T) {
	for _, kind := range []string{config.KindOpenAI, config.KindOpenAISDK} {
		t.Run(kind, func(t *testing.T) {
			e := newEndpoint(t, "m")
			cfg := writeConfig(t, kind, e.url)

			res := runCLI(t, withKey("k"), "--config", cfg, "generate", "--model", "m", "--temperature", "0.7", "Hello")
			require.Equal(t, exitOK, res.code, res.stderr)
			require.NotNil(t, e.lastTemperature())
			assert.InDelta(t, 0.7, *e.lastTemperature(), 1e-9)

			res = runCLI(t, withKey("k"), "--config", cfg, "generate", "--model", "m", "--temperature", "3", "Hello")
			assert.Equal(t, exitUsage, res.code)
		})
	}
}

func TestAvailability_LeavesTemperatureUnset(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "probe", "m")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Nil(t, e.lastTemperature())
}

func TestGenerate_Usage(t *testing.T) {
	res := runCLI(t, withKey("k"), "generate", "Hello")
	assert.Equal(t, exitUsage, res.code)
}

func TestParse(t *testing.T) {
	e := newEndpoint(t, "m")
	e.reply = "```json\n{\"name\":\"John\",\"age\":30}\n```"
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "parse", "--model", "m", "John is 30 years old.")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "Name: John\nAge: 30\n", res.stdout)
}

func TestParse_UnknownModel(t *testing.T) {
	e := newEndpoint(t, "m")
	cfg := writeConfig(t, config.KindOpenAI, e.url)

	res := runCLI(t, withKey("k"), "--config", cfg, "parse", "--model", "other", "John is 30.")

	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "does not exist")
}

func TestRun_CommandErrors(t *testing.T) {
	assert.Equal(t, exitUsage, runCLI(t, withKey("k")).code)
	assert.Equal(t, exitOK, runCLI(t, withKey("k"), "help").code)

	res := runCLI(t, withKey("k"), "frobnicate")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, `unknown command "frobnicate"`)

	res = runCLI(t, withKey("k"), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "probe", "m")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "config: load")
}

func TestFormatModelTable(t *testing.T) {
	table := formatModelTable([]modeladapter.ModelInfo{
		{ID: "a", OwnedBy: "系统", Created: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "longer-id", OwnedBy: "org"},
	})

	lines := strings.Split(table, "\n")
	require.Len(t, lines, 3)

	col := func(line, cell string) int {
		return runewidth.StringWidth(line[:strings.Index(line, cell)])
	}
	assert.Equal(t, col(lines[0], "OWNED BY"), col(lines[1], "系统"))
	assert.Equal(t, col(lines[0], "OWNED BY"), col(lines[2], "org"))
	assert.Contains(t, lines[1], "2024-05-01")
	assert.True(t, strings.HasSuffix(lines[2], "-"))

	assert.Contains(t, formatModelTable(nil), "no models reported")
}

func TestFmtDuration(t *testing.T) {
	assert.Equal(t, "250ms", fmtDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", fmtDuration(1500*time.Millisecond))
}
