package main

import (
	"github.com/germanamz/modelprobe/pkg/mcpserver"
)

func (a *app) cmdMCP(args []string) int {
	fs := a.flagSet("mcp", "", "Serve the probe and model listing as MCP tools over stdio.")
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

	lister, err := a.client(cred, "", 0, nil)
	if err != nil {
		a.fail(err)
		return exitFailure
	}

	prober := a.prober()

	srv := mcpserver.New("modelprobe", version)
	srv.Register(
		mcpserver.ProbeTool(prober, cred),
		mcpserver.ProbeManyTool(prober, cred),
		mcpserver.ListModelsTool(lister),
	)

	a.log.Info("serving MCP over stdio")

	if err := srv.Serve(a.ctx, a.stdin, a.stdout); err != nil && a.ctx.Err() == nil {
		a.fail(err)
		return exitFailure
	}

	return exitOK
}
