// Package openai provides a Completer for OpenAI-compatible Chat Completions
// endpoints such as Nebius AI Studio, built on modeladapter's HTTP helpers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/germanamz/modelprobe/pkg/chats/role"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/modeladapter/usage"
)

const (
	completionsPath = "/chat/completions"
	modelsPath      = "/models"
)

var (
	_ modeladapter.Completer   = (*Adapter)(nil)
	_ modeladapter.ModelLister = (*Adapter)(nil)
)

// Adapter talks to an OpenAI-compatible API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter. baseURL includes the API version segment and has no
// trailing slash (e.g. "https://api.studio.nebius.com/v1").
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model
	a.HeaderParser = modeladapter.ParseOpenAIRateLimitHeaders

	return a
}

// Complete sends msgs to the Chat Completions endpoint and returns the first
// choice as an assistant message.
func (a *Adapter) Complete(ctx context.Context, msgs []message.Message) (message.Message, error) {
	var resp apiResponse
	if err := a.PostJSON(ctx, completionsPath, a.buildRequest(msgs), &resp); err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", err)
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	if len(resp.Choices) == 0 {
		return message.Message{}, errors.New("openai: empty choices in response")
	}

	choice := resp.Choices[0]
	reply := message.Assistant("")
	reply.FinishReason = choice.FinishReason
	if choice.Message.Content != nil {
		reply.Text = *choice.Message.Content
	}

	return reply, nil
}

// ListModels returns the models served by the endpoint, sorted by ID.
func (a *Adapter) ListModels(ctx context.Context) ([]modeladapter.ModelInfo, error) {
	var resp apiModelList
	if err := a.GetJSON(ctx, modelsPath, &resp); err != nil {
		return nil, fmt.Errorf("openai: list models: %w", err)
	}

	out := make([]modeladapter.ModelInfo, 0, len(resp.Data))
	for _, m := range resp.Data {
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

// --- wire types ---

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
	Usage   apiUsage    `json:"usage"`
}

type apiChoice struct {
	Message      apiRespMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type apiRespMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiModelList struct {
	Data []apiModel `json:"data"`
}

type apiModel struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
}

func (a *Adapter) buildRequest(msgs []message.Message) apiRequest {
	req := apiRequest{
		Model:     a.Name,
		MaxTokens: a.MaxTokens,
		Messages:  make([]apiMessage, 0, len(msgs)),
	}

	if a.Temperature != nil {
		t := *a.Temperature
		req.Temperature = &t
	}

	for _, m := range msgs {
		r := m.Role
		if !r.Valid() {
			r = role.User
		}
		req.Messages = append(req.Messages, apiMessage{Role: r.String(), Content: m.Text})
	}

	return req
}
