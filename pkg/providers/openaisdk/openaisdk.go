// Package openaisdk provides a Completer backed by the official openai-go SDK,
// pointed at any OpenAI-compatible base URL.
package openaisdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/germanamz/modelprobe/pkg/chats/role"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/modeladapter/usage"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	_ modeladapter.Completer     = (*Client)(nil)
	_ modeladapter.ModelLister   = (*Client)(nil)
	_ modeladapter.UsageReporter = (*Client)(nil)

	_ modeladapter.RateLimitInfoReporter = (*Client)(nil)
)

// Client wraps the SDK client. The SDK's own retries are disabled: one call
// to Complete performs exactly one HTTP request.
type Client struct {
	cli         openai.Client
	model       string
	maxTokens   int
	temperature *float64
	usage       usage.Tracker
	rateLimit   atomic.Pointer[modeladapter.RateLimitInfo]
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	httpClient  *http.Client
	maxTokens   int
	temperature *float64
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithMaxTokens caps the completion length. Zero leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(s *settings) { s.maxTokens = n }
}

// WithTemperature sets the sampling temperature. It is sent even when zero;
// without this option the provider default applies.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = &t }
}

// New creates a Client for baseURL (e.g. "https://api.studio.nebius.com/v1").
func New(baseURL, apiKey, model string, opts ...Option) *Client {
	var s settings
	for _, o := range opts {
		o(&s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}

	return &Client{
		cli:         openai.NewClient(reqOpts...),
		model:       model,
		maxTokens:   s.maxTokens,
		temperature: s.temperature,
	}
}

// UsageTracker returns the client's token usage tracker.
func (c *Client) UsageTracker() *usage.Tracker { return &c.usage }

// LastRateLimitInfo returns the rate limit headers of the last successful
// completion, or nil.
func (c *Client) LastRateLimitInfo() *modeladapter.RateLimitInfo { return c.rateLimit.Load() }

// Complete sends msgs through the SDK's Chat Completions API.
func (c *Client) Complete(ctx context.Context, msgs []message.Message) (message.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toParams(msgs),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}

	var raw *http.Response
	opts := append(requestOptions(ctx), option.WithResponseInto(&raw))

	resp, err := c.cli.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return message.Message{}, fmt.Errorf("openaisdk: %w", err)
	}

	if raw != nil {
		if info := modeladapter.ParseOpenAIRateLimitHeaders(raw.Header, time.Now()); info != nil {
			c.rateLimit.Store(info)
		}
	}

	c.usage.Add(usage.TokenCount{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	})

	if len(resp.Choices) == 0 {
		return message.Message{}, errors.New("openaisdk: empty choices in response")
	}

	choice := resp.Choices[0]
	reply := message.Assistant(choice.Message.Content)
	reply.FinishReason = string(choice.FinishReason)

	return reply, nil
}

// ListModels returns the models served by the endpoint, sorted by ID.
func (c *Client) ListModels(ctx context.Context) ([]modeladapter.ModelInfo, error) {
	page, err := c.cli.Models.List(ctx, requestOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("openaisdk: list models: %w", err)
	}

	out := make([]modeladapter.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		if m.ID == "" {
			continue
		}
		info := modeladapter.ModelInfo{ID: m.ID, OwnedBy: m.OwnedBy}
		if m.Created > 0 {
			info.Created = time.Unix(m.Created, 0).UTC()
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// StatusCode returns the HTTP status carried by an SDK error, or 0.
func StatusCode(err error) int {
	status, _, _ := Describe(err)
	return status
}

// Describe unpacks an SDK API error into its HTTP status and the service's
// error message and code. ok is false for errors that did not come from an
// HTTP response (transport failures, context cancellation).
func Describe(err error) (status int, text string, ok bool) {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return 0, "", false
	}
	return apiErr.StatusCode, strings.TrimSpace(apiErr.Message + " " + apiErr.Code), true
}

func requestOptions(ctx context.Context) []option.RequestOption {
	if id := modeladapter.RequestIDFrom(ctx); id != "" {
		return []option.RequestOption{option.WithHeader(modeladapter.RequestIDHeader, id)}
	}
	return nil
}

func toParams(msgs []message.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case role.System:
			out = append(out, openai.SystemMessage(m.Text))
		case role.Assistant:
			out = append(out, openai.AssistantMessage(m.Text))
		default:
			out = append(out, openai.UserMessage(m.Text))
		}
	}
	return out
}
