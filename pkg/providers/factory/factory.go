// Package factory builds completers from provider configuration.
package factory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/germanamz/modelprobe/pkg/config"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/probe"
	"github.com/germanamz/modelprobe/pkg/providers/openai"
	"github.com/germanamz/modelprobe/pkg/providers/openaisdk"
)

// Client is what every registered provider returns: it completes chats and
// lists models.
type Client interface {
	modeladapter.Completer
	modeladapter.ModelLister
}

// Params carries everything a provider needs for one client.
type Params struct {
	Provider  config.ProviderConfig
	APIKey    string
	Model     string
	MaxTokens int
	// Temperature overrides Provider.Temperature when non-nil.
	Temperature *float64
}

func (p Params) temperature() *float64 {
	if p.Temperature != nil {
		return p.Temperature
	}
	return p.Provider.Temperature
}

// Func creates a Client from Params.
type Func func(p Params) (Client, error)

var (
	mu          sync.RWMutex
	funcs       = map[string]Func{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		funcs[config.KindOpenAI] = newOpenAI
		funcs[config.KindOpenAISDK] = newOpenAISDK
	})
}

// Register adds or replaces the factory for kind.
func Register(kind string, f Func) {
	ensureDefaults()

	mu.Lock()
	defer mu.Unlock()

	funcs[kind] = f
}

// Kinds returns the registered provider kinds in sorted order.
func Kinds() []string {
	ensureDefaults()

	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(funcs))
	for k := range funcs {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// New builds a Client for p.Provider.Kind.
func New(p Params) (Client, error) {
	ensureDefaults()

	mu.RLock()
	f, ok := funcs[p.Provider.Kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("factory: unknown provider kind %q", p.Provider.Kind)
	}

	return f(p)
}

// ForProbe adapts New to probe.Factory for the given provider settings.
func ForProbe(pc config.ProviderConfig) probe.Factory {
	return func(req probe.Request) (modeladapter.Completer, error) {
		return New(Params{
			Provider:  pc,
			APIKey:    req.Credential,
			Model:     req.Model,
			MaxTokens: req.MaxOutputTokens,
		})
	}
}

func baseURL(pc config.ProviderConfig) string {
	if pc.BaseURL == "" {
		return probe.DefaultBaseURL
	}
	return pc.BaseURL
}

func newOpenAI(p Params) (Client, error) {
	a := openai.New(baseURL(p.Provider), p.APIKey, p.Model)
	a.MaxTokens = p.MaxTokens
	if t := p.temperature(); t != nil {
		v := *t
		a.Temperature = &v
	}

	return a, nil
}

func newOpenAISDK(p Params) (Client, error) {
	opts := []openaisdk.Option{openaisdk.WithMaxTokens(p.MaxTokens)}
	if t := p.temperature(); t != nil {
		opts = append(opts, openaisdk.WithTemperature(*t))
	}

	return openaisdk.New(baseURL(p.Provider), p.APIKey, p.Model, opts...), nil
}
