package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/modelprobe/pkg/catalog"
	"github.com/germanamz/modelprobe/pkg/probe"
)

const maxSuggestions = 3

func (a *app) cmdProbe(args []string) int {
	fs := a.flagSet("probe", "<model-id>", "Send one short test completion to check that a model ID is served.")
	suggest := fs.Bool("suggest", false, "when the model is not found, list models (a second request) and suggest close matches")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		fmt.Fprintf(a.stderr, "\nExample:\n  modelprobe probe 'deepseek-ai/DeepSeek-R1-0528'\n  modelprobe probe 'gpt-oss-120b'\n")
		return exitUsage
	}

	cred, ok := a.credential()
	if !ok {
		return exitFailure
	}

	return a.probeModel(cred, fs.Arg(0), *suggest)
}

// probeModel runs one probe, prints the result and returns the exit code
// for its outcome.
func (a *app) probeModel(cred, model string, suggest bool) int {
	a.println(titleStyle.Render("Testing model: " + model))
	a.println(ruleStyle.Render(strings.Repeat("=", 60)))

	res, err := a.prober().Probe(a.ctx, model, cred)
	if err != nil {
		a.fail(err)
		if errors.Is(err, probe.ErrEmptyModel) {
			return exitUsage
		}
		return exitFailure
	}

	switch res.Outcome {
	case probe.OutcomeAvailable:
		a.println(successStyle.Render("✅ Success! " + res.Summary()))
		a.println("Response: " + strings.TrimSpace(res.Text))
		a.printDetails(res)
		return exitOK

	case probe.OutcomeNotFound:
		a.println(errorStyle.Render("❌ Error: " + res.Summary()))
		a.println("")
		a.println(a.renderMarkdown(catalog.NotFoundTips(model)))
		if suggest {
			a.printSuggestions(cred, model)
		}
		a.printDetails(res)
		return exitNotFound

	default:
		a.println(errorStyle.Render("❌ Error: " + res.Message))
		a.printDetails(res)
		return exitError
	}
}

// printSuggestions lists close matches for model. Listing failures are only
// logged: the probe result has already been reported.
func (a *app) printSuggestions(cred, model string) {
	client, err := a.client(cred, "", 0, nil)
	if err != nil {
		a.log.WithError(err).Debug("suggestions unavailable")
		return
	}

	models, err := catalog.New(client).List(a.ctx)
	if err != nil {
		a.log.WithError(err).Debug("suggestions unavailable")
		return
	}

	matches := catalog.Suggest(model, catalog.IDs(models), maxSuggestions)
	if len(matches) == 0 {
		return
	}

	a.println(headerStyle.Render("Did you mean:"))
	for _, m := range matches {
		a.println("  - " + m)
	}
}

func (a *app) printDetails(res probe.Result) {
	if !a.verbose {
		return
	}

	parts := []string{"request " + res.RequestID, fmtDuration(res.Latency)}
	if !res.Usage.IsZero() {
		parts = append(parts, res.Usage.String())
	}
	if res.RateLimit != nil {
		parts = append(parts, res.RateLimit.String())
	}
	a.println(dimStyle.Render(strings.Join(parts, " · ")))
}
