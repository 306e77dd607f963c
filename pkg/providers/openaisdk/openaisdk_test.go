package openaisdk_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/providers/openaisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv.URL + "/v1"
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func completion(text string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "m",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": text},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 2, "total_tokens": 11},
	}
}

func TestComplete(t *testing.T) {
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sdk-key", r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get(modeladapter.RequestIDHeader))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-oss-120b", req["model"])
		assert.InDelta(t, 10, req["max_tokens"], 0)

		writeJSON(t, w, http.StatusOK, completion("Hello"))
	})

	c := openaisdk.New(base, "sdk-key", "gpt-oss-120b", openaisdk.WithMaxTokens(10))

	ctx := modeladapter.WithRequestID(context.Background(), "req-42")
	reply, err := c.Complete(ctx, []message.Message{message.User("Say 'Hello'")})
	require.NoError(t, err)

	assert.Equal(t, "Hello", reply.Text)
	assert.Equal(t, "stop", reply.FinishReason)

	last, ok := c.UsageTracker().Last()
	require.True(t, ok)
	assert.Equal(t, 9, last.InputTokens)
	assert.Equal(t, 2, last.OutputTokens)
}

func TestComplete_Temperature(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		mu.Lock()
		bodies = append(bodies, req)
		mu.Unlock()

		writeJSON(t, w, http.StatusOK, completion("ok"))
	})

	_, err := openaisdk.New(base, "k", "m", openaisdk.WithTemperature(0)).Complete(context.Background(), []message.Message{message.User("hi")})
	require.NoError(t, err)
	_, err = openaisdk.New(base, "k", "m").Complete(context.Background(), []message.Message{message.User("hi")})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, bodies, 2)
	require.Contains(t, bodies[0], "temperature")
	assert.InDelta(t, 0, bodies[0]["temperature"], 0)
	assert.NotContains(t, bodies[1], "temperature")
}

func TestComplete_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	base := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "The model `nope` does not exist", "type": "invalid_request_error", "code": "model_not_found"},
		})
	})

	c := openaisdk.New(base, "sdk-key", "nope")

	_, err := c.Complete(context.Background(), []message.Message{message.User("hi")})
	require.Error(t, err)

	assert.Equal(t, http.StatusNotFound, openaisdk.StatusCode(err))
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	base := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]any{"error": map[string]any{"message": "overloaded"}})
	})

	_, err := openaisdk.New(base, "k", "m").Complete(context.Background(), []message.Message{message.User("hi")})
	require.Error(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, openaisdk.StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestListModels(t *testing.T) {
	base := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "zeta/model", "object": "model", "created": 1700000000, "owned_by": "zeta"},
				{"id": "alpha/model", "object": "model", "created": 0, "owned_by": "alpha"},
			},
		})
	})

	models, err := openaisdk.New(base, "k", "").ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, "alpha/model", models[0].ID)
	assert.Equal(t, "zeta/model", models[1].ID)
	assert.Equal(t, "zeta", models[1].OwnedBy)
}

func TestStatusCode_NonSDKError(t *testing.T) {
	assert.Equal(t, 0, openaisdk.StatusCode(assert.AnError))
}
