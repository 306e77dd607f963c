package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/germanamz/modelprobe/pkg/probe"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
	exitError    = 4
)

type command struct {
	summary string
	run     func(a *app, args []string) int
}

var commands = map[string]command{
	"probe":    {"Check whether a model ID is served by the endpoint", (*app).cmdProbe},
	"models":   {"List the models the endpoint reports", (*app).cmdModels},
	"generate": {"Send an instruction and a text to a model", (*app).cmdGenerate},
	"parse":    {"Extract a person's name and age from a text", (*app).cmdParse},
	"mcp":      {"Serve the probe and model listing as MCP tools over stdio", (*app).cmdMCP},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.LookupEnv, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, lookup probe.LookupFunc, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modelprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	configPath := fs.String("config", "", "path to configuration file (default: "+defaultConfigHint+")")
	envFile := fs.String("env", ".env", "path to .env file (ignored if missing)")
	verbose := fs.Bool("verbose", false, "enable debug logging and show request details")

	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	name := fs.Arg(0)
	if name == "help" {
		fs.Usage()
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", name)
		fs.Usage()
		return exitUsage
	}

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}

	a, err := newApp(ctx, options{
		configPath: *configPath,
		verbose:    *verbose,
		lookup:     lookup,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
	defer a.Close()

	return cmd.run(a, fs.Args()[1:])
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()

	fmt.Fprintf(w, "Usage: modelprobe [flags] <command> [args]\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-9s %s\n", n, commands[n].summary)
	}

	fmt.Fprintf(w, "\nFlags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExample:\n  modelprobe probe 'deepseek-ai/DeepSeek-R1-0528'\n")
}

// parseExit maps a flag parsing error to an exit code. -h is not an error.
func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}
