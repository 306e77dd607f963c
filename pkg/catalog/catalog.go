// Package catalog lists the models an endpoint serves and helps users find
// the right identifier when a probe reports NotFound.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DashboardURL is where Nebius users can browse available models.
	DashboardURL = "https://studio.nebius.com/"
	// DocsURL is the Nebius AI Studio documentation.
	DocsURL = "https://docs.studio.nebius.com/"
)

// CommonModelIDs are identifier formats known to be served by Nebius AI
// Studio. They are shown when the endpoint cannot be listed.
var CommonModelIDs = []string{
	"deepseek-ai/DeepSeek-R1-0528",
	"meta-llama/Meta-Llama-3-70B-Instruct",
}

// SuggestCutoff is the minimum similarity for Suggest to return a candidate.
const SuggestCutoff = 0.6

// Catalog wraps a ModelLister.
type Catalog struct {
	lister modeladapter.ModelLister
}

// New creates a Catalog.
func New(l modeladapter.ModelLister) *Catalog {
	return &Catalog{lister: l}
}

// List returns the endpoint's models sorted by ID.
func (c *Catalog) List(ctx context.Context) ([]modeladapter.ModelInfo, error) {
	models, err := c.lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list models: %w", err)
	}

	sort.SliceStable(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	return models, nil
}

// IDs extracts the identifiers of models.
func IDs(models []modeladapter.ModelInfo) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.ID
	}
	return out
}

// Suggest returns up to n candidates most similar to target, best first.
// Similarity is the sequence-matcher ratio over characters, compared both on
// the full ID and on the part after the vendor prefix ("org/name").
func Suggest(target string, candidates []string, n int) []string {
	if n <= 0 || target == "" {
		return nil
	}

	type scored struct {
		id    string
		score float64
	}

	var hits []scored
	for _, c := range candidates {
		s := similarity(target, c)
		if c != target && s >= SuggestCutoff {
			hits = append(hits, scored{id: c, score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})

	if len(hits) > n {
		hits = hits[:n]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)

	best := ratio(a, b)
	if r := ratio(baseName(a), baseName(b)); r > best {
		best = r
	}
	return best
}

func ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// baseName strips a vendor prefix: "openai/gpt-oss-120b" becomes "gpt-oss-120b".
func baseName(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
