package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/modelprobe/pkg/config"
	"github.com/germanamz/modelprobe/pkg/modeladapter"
	"github.com/germanamz/modelprobe/pkg/probe"
	"github.com/germanamz/modelprobe/pkg/providers/factory"
	"github.com/sirupsen/logrus"
)

const defaultConfigHint = config.DefaultPath + " if present"

type options struct {
	configPath string
	verbose    bool
	lookup     probe.LookupFunc
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

// app holds what every subcommand needs: configuration, logger and streams.
type app struct {
	ctx     context.Context
	cfg     config.Config
	log     *logrus.Logger
	logFile io.Closer
	md      *glamour.TermRenderer
	verbose bool

	lookup probe.LookupFunc
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(ctx context.Context, o options) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath == "" {
		cfg, err = config.Load(config.DefaultPath, true)
	} else {
		cfg, err = config.Load(o.configPath, false)
	}
	if err != nil {
		return nil, err
	}

	log, closer, err := cfg.Log.NewLogger(o.stderr, o.verbose)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	return &app{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		logFile: closer,
		md:      newMarkdownRenderer(100),
		verbose: o.verbose,
		lookup:  o.lookup,
		stdin:   o.stdin,
		stdout:  o.stdout,
		stderr:  o.stderr,
	}, nil
}

// Close releases the log file, if any.
func (a *app) Close() {
	_ = a.logFile.Close()
}

// credential resolves the API key. On failure it prints the error with a
// hint and the caller exits without touching the network.
func (a *app) credential() (string, bool) {
	cred, err := probe.ResolveCredential(a.lookup, a.cfg.Provider.APIKeyEnv)
	if err != nil {
		a.fail(err)
		fmt.Fprintf(a.stderr, "Please set it with: export %s='your-key-here'\n", a.cfg.Provider.APIKeyEnv)
		return "", false
	}
	return cred, true
}

func (a *app) prober() *probe.Prober {
	return probe.New(factory.ForProbe(a.cfg.Provider),
		probe.WithPrompt(a.cfg.Probe.Prompt),
		probe.WithMaxOutputTokens(a.cfg.Probe.MaxTokens),
		probe.WithLogger(a.log),
	)
}

// client builds a provider client for model; model may be empty when only
// listing is needed. A nil temperature falls back to the configured one.
func (a *app) client(cred, model string, maxTokens int, temperature *float64) (*modeladapter.LoggingCompleter, error) {
	c, err := factory.New(factory.Params{
		Provider:    a.cfg.Provider,
		APIKey:      cred,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	return modeladapter.NewLoggingCompleter(c, a.log, model), nil
}

func (a *app) flagSet(name, positional, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: modelprobe %s [flags] %s\n\n%s\n", name, positional, summary)
		if hasFlags(fs) {
			fmt.Fprintf(a.stderr, "\nFlags:\n")
			fs.PrintDefaults()
		}
	}
	return fs
}

func hasFlags(fs *flag.FlagSet) bool {
	n := 0
	fs.VisitAll(func(*flag.Flag) { n++ })
	return n > 0
}

func (a *app) fail(err error) {
	fmt.Fprintf(a.stderr, "%s %v\n", errorStyle.Render("error:"), err)
}

func (a *app) println(s string) {
	fmt.Fprintln(a.stdout, s)
}
