package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/germanamz/modelprobe/pkg/chats/message"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/sirupsen/logrus"
)

const (
	// Prompt is the single user message sent by a probe.
	Prompt = "Say 'Hello' if you can read this."
	// MaxOutputTokens bounds the probe's completion length.
	MaxOutputTokens = 10
)

// Request describes the completion a probe sends.
type Request struct {
	Model           string
	Credential      string
	Prompt          string
	MaxOutputTokens int
}

// Factory builds a completer bound to the endpoint and the request's
// credential, model and output cap.
type Factory func(req Request) (modeladapter.Completer, error)

// Prober runs probes. It holds no per-probe state and may be reused.
type Prober struct {
	factory   Factory
	prompt    string
	maxTokens int
	log       logrus.FieldLogger
}

// Option configures a Prober.
type Option func(*Prober)

// WithPrompt overrides Prompt.
func WithPrompt(p string) Option {
	return func(pr *Prober) {
		if p != "" {
			pr.prompt = p
		}
	}
}

// WithMaxOutputTokens overrides MaxOutputTokens.
func WithMaxOutputTokens(n int) Option {
	return func(pr *Prober) {
		if n > 0 {
			pr.maxTokens = n
		}
	}
}

// WithLogger enables debug logging of each probe.
func WithLogger(log logrus.FieldLogger) Option {
	return func(pr *Prober) { pr.log = log }
}

// New creates a Prober that builds its completers with factory.
func New(factory Factory, opts ...Option) *Prober {
	p := &Prober{
		factory:   factory,
		prompt:    Prompt,
		maxTokens: MaxOutputTokens,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe sends one test completion for model. The returned error is non-nil
// only for configuration problems found before any network call
// (ErrMissingCredential, ErrEmptyModel); every remote failure is reported
// through the Result.
func (p *Prober) Probe(ctx context.Context, model, credential string) (Result, error) {
	model = strings.TrimSpace(model)
	if strings.TrimSpace(credential) == "" {
		return Result{}, ErrMissingCredential
	}
	if model == "" {
		return Result{}, ErrEmptyModel
	}

	ctx, id := modeladapter.NewRequestID(ctx)
	start := time.Now()

	res := p.run(ctx, Request{
		Model:           model,
		Credential:      credential,
		Prompt:          p.prompt,
		MaxOutputTokens: p.maxTokens,
	})
	res.RequestID = id
	res.Latency = time.Since(start)

	if p.log != nil {
		p.log.WithFields(logrus.Fields{
			"model":      model,
			"outcome":    res.Outcome.String(),
			"request_id": id,
			"latency":    res.Latency,
		}).Debug("probe finished")
	}

	return res, nil
}

// ProbeAll probes each model in order, one at a time. It stops early only on
// a configuration error or when ctx is done; results gathered so far are
// returned either way.
func (p *Prober) ProbeAll(ctx context.Context, models []string, credential string) ([]Result, error) {
	out := make([]Result, 0, len(models))
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := p.Probe(ctx, m, credential)
		if err != nil {
			return out, fmt.Errorf("probe %q: %w", m, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (p *Prober) run(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failed(req.Model, fmt.Sprintf("probe panicked: %v", r))
		}
	}()

	completer, err := p.factory(req)
	if err != nil {
		return Failed(req.Model, err.Error())
	}
	if p.log != nil {
		completer = modeladapter.NewLoggingCompleter(completer, p.log, req.Model)
	}

	reply, err := completer.Complete(ctx, []message.Message{message.User(req.Prompt)})

	switch Classify(err) {
	case OutcomeAvailable:
		res = Available(req.Model, reply.Text)
	case OutcomeNotFound:
		res = NotFound(req.Model)
	default:
		res = Failed(req.Model, err.Error())
	}

	if r, ok := unwrap[modeladapter.UsageReporter](completer); ok {
		res.Usage, _ = r.UsageTracker().Last()
	}
	if r, ok := unwrap[modeladapter.RateLimitInfoReporter](completer); ok {
		res.RateLimit = r.LastRateLimitInfo()
	}

	return res
}

// unwrap looks through completer wrappers such as
// modeladapter.LoggingCompleter for the first value implementing T.
func unwrap[T any](c modeladapter.Completer) (T, bool) {
	for {
		if v, ok := c.(T); ok {
			return v, true
		}
		u, ok := c.(interface{ Unwrap() modeladapter.Completer })
		if !ok {
			var zero T
			return zero, false
		}
		c = u.Unwrap()
	}
}
