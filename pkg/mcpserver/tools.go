package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/modelprobe/pkg/catalog"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/probe"
	"github.com/google/jsonschema-go/jsonschema"
)

type probeInput struct {
	Model string `json:"model" jsonschema:"model identifier to check, for example deepseek-ai/DeepSeek-R1-0528"`
}

type probeManyInput struct {
	Models []string `json:"models" jsonschema:"model identifiers to check one after another"`
}

type listInput struct{}

// ProbeTool returns the probe_model tool. Non-available outcomes are
// reported as tool errors carrying the result summary.
func ProbeTool(p *probe.Prober, credential string) Tool {
	return Tool{
		Name:        "probe_model",
		Description: "Send one short test completion to check whether a model identifier is served by the endpoint.",
		InputSchema: mustSchema[probeInput](),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in probeInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("probe_model: invalid input: %w", err)
			}

			res, err := p.Probe(ctx, in.Model, credential)
			if err != nil {
				return "", fmt.Errorf("probe_model: %w", err)
			}

			if !res.OK() {
				return "", errors.New(res.Summary())
			}

			return fmt.Sprintf("%s\nResponse: %s", res.Summary(), strings.TrimSpace(res.Text)), nil
		},
	}
}

// ProbeManyTool returns the probe_models tool. Each model gets one line with
// its outcome. The call is a tool error only when no model is available.
func ProbeManyTool(p *probe.Prober, credential string) Tool {
	return Tool{
		Name:        "probe_models",
		Description: "Check several model identifiers one after another and report which are served.",
		InputSchema: mustSchema[probeManyInput](),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in probeManyInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("probe_models: invalid input: %w", err)
			}
			if len(in.Models) == 0 {
				return "", errors.New("probe_models: no models given")
			}

			results, err := p.ProbeAll(ctx, in.Models, credential)
			if err != nil {
				return "", fmt.Errorf("probe_models: %w", err)
			}

			lines := make([]string, len(results))
			available := 0
			for i, r := range results {
				if r.OK() {
					available++
				}
				lines[i] = fmt.Sprintf("%s\t%s", r.Outcome, r.Model)
				if r.Outcome == probe.OutcomeError {
					lines[i] += "\t" + r.Message
				}
			}

			out := strings.Join(lines, "\n")
			if available == 0 {
				return "", errors.New(out)
			}
			return out, nil
		},
	}
}

// ListModelsTool returns the list_models tool. Output is one model ID per
// line.
func ListModelsTool(l modeladapter.ModelLister) Tool {
	c := catalog.New(l)

	return Tool{
		Name:        "list_models",
		Description: "List the model identifiers the endpoint reports.",
		InputSchema: mustSchema[listInput](),
		Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
			models, err := c.List(ctx)
			if err != nil {
				return "", err
			}
			if len(models) == 0 {
				return "no models reported", nil
			}

			return strings.Join(catalog.IDs(models), "\n"), nil
		},
	}
}

func mustSchema[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("mcpserver: schema: %v", err))
	}
	return s
}
