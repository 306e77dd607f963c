package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/modelprobe/pkg/catalog"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/mattn/go-runewidth"
)

var errNotInteractive = errors.New("--pick needs an interactive terminal")

func (a *app) cmdModels(args []string) int {
	fs := a.flagSet("models", "", "List the models the endpoint reports.")
	pick := fs.Bool("pick", false, "choose a model interactively and probe it")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return exitUsage
	}

	cred, ok := a.credential()
	if !ok {
		return exitFailure
	}

	client, err := a.client(cred, "", 0, nil)
	if err != nil {
		a.fail(err)
		return exitFailure
	}

	models, err := catalog.New(client).List(a.ctx)
	if err != nil {
		a.printListingFailure(err)
		return exitError
	}

	a.println(titleStyle.Render("Available models:"))
	a.println(ruleStyle.Render(strings.Repeat("=", 60)))
	a.println(formatModelTable(models))

	if !*pick {
		return exitOK
	}

	if !isTerminal(a.stdin) {
		a.fail(errNotInteractive)
		return exitUsage
	}

	model, err := pickModel(catalog.IDs(models))
	if err != nil {
		a.fail(err)
		return exitFailure
	}
	a.println("")

	return a.probeModel(cred, model, false)
}

func (a *app) printListingFailure(err error) {
	a.println(warnStyle.Render(fmt.Sprintf("Note: direct model listing not available: %v", err)))
	a.println("")

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		a.println(a.renderMarkdown("# Error connecting to the API\n\n" + catalog.ConnectionTips(a.cfg.Provider.APIKeyEnv)))
		return
	}
	a.println(a.renderMarkdown(catalog.ListingTips()))
}

// formatModelTable aligns the model list in columns by display width.
func formatModelTable(models []modeladapter.ModelInfo) string {
	if len(models) == 0 {
		return dimStyle.Render("  (no models reported)")
	}

	rows := [][]string{{"ID", "OWNED BY", "CREATED"}}
	for _, m := range models {
		created := "-"
		if !m.Created.IsZero() {
			created = m.Created.UTC().Format("2006-01-02")
		}
		owner := m.OwnedBy
		if owner == "" {
			owner = "-"
		}
		rows = append(rows, []string{m.ID, owner, created})
	}

	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for i, r := range rows {
		line := make([]string, len(r))
		for j, cell := range r {
			if j == len(r)-1 {
				line[j] = cell
				continue
			}
			line[j] = runewidth.FillRight(cell, widths[j])
		}
		text := "  " + strings.Join(line, "  ")
		if i == 0 {
			text = headerStyle.Render(text)
		}
		b.WriteString(text)
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func pickModel(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", errors.New("no models to pick from")
	}

	opts := make([]huh.Option[string], len(ids))
	for i, id := range ids {
		opts[i] = huh.NewOption(id, id)
	}

	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model to probe").
				Options(opts...).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return "", err
	}

	return choice, nil
}
