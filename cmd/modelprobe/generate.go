package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/germanamz/modelprobe/pkg/generalmodel"
)

const defaultInstruction = "You are a helpful assistant."

// person is the sample type for the parse command.
type person struct {
	Name string `json:"name" jsonschema:"the person's full name"`
	Age  int    `json:"age" jsonschema:"the person's age in years"`
}

func (a *app) cmdGenerate(args []string) int {
	fs := a.flagSet("generate", "<text>", "Send an instruction (system message) and a text (user message) to a model.")
	model := fs.String("model", "", "model ID (required)")
	instruction := fs.String("instruction", defaultInstruction, "system instruction")
	maxTokens := fs.Int("max-tokens", 512, "output token cap")
	temperature := fs.Float64("temperature", 0, "sampling temperature in [0, 2] (default: config value, else 0)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if *model == "" || text == "" || *maxTokens <= 0 || !validTemperature(*temperature) {
		fs.Usage()
		return exitUsage
	}

	gm, code := a.generalModel(*model, *maxTokens, a.samplingTemperature(fs, *temperature))
	if gm == nil {
		return code
	}

	out, err := gm.Generate(a.ctx, *instruction, text)
	if err != nil {
		a.fail(err)
		return exitError
	}

	a.println(out)
	return exitOK
}

func (a *app) cmdParse(args []string) int {
	fs := a.flagSet("parse", "<text>", "Extract a person's name and age from a text as JSON.")
	model := fs.String("model", "", "model ID (required)")
	temperature := fs.Float64("temperature", 0, "sampling temperature in [0, 2] (default: config value, else 0)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if *model == "" || text == "" || !validTemperature(*temperature) {
		fs.Usage()
		return exitUsage
	}

	gm, code := a.generalModel(*model, 256, a.samplingTemperature(fs, *temperature))
	if gm == nil {
		return code
	}

	p, err := generalmodel.Parse[person](a.ctx, gm, text)
	if err != nil {
		a.fail(err)
		return exitError
	}

	a.println(fmt.Sprintf("Name: %s", p.Name))
	a.println(fmt.Sprintf("Age: %d", p.Age))
	return exitOK
}

func (a *app) generalModel(model string, maxTokens int, temperature *float64) (*generalmodel.Model, int) {
	cred, ok := a.credential()
	if !ok {
		return nil, exitFailure
	}

	client, err := a.client(cred, model, maxTokens, temperature)
	if err != nil {
		a.fail(err)
		return nil, exitFailure
	}

	return generalmodel.New(client), exitOK
}

// samplingTemperature picks an explicit --temperature, then the configured
// temperature, then 0. The result is always sent to the provider.
func (a *app) samplingTemperature(fs *flag.FlagSet, value float64) *float64 {
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "temperature" {
			explicit = true
		}
	})

	switch {
	case explicit:
		return &value
	case a.cfg.Provider.Temperature != nil:
		t := *a.cfg.Provider.Temperature
		return &t
	default:
		var zero float64
		return &zero
	}
}

func validTemperature(t float64) bool {
	return t >= 0 && t <= 2
}
