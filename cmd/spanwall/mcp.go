package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: spanwall mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'spanwall mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: spanwall mcp serve [source flags]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Outputs are read from the source flags")
		fmt.Fprintln(os.Stdout, "on every call, or from the live sway or X11 session when none is given.")
		return 0
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		common  commonFlags
		sources sourceFlags
	)
	common.register(fs)
	sources.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := sources.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if sources.outputsFile == "-" || sources.swayJSON == "-" {
		fmt.Fprintln(os.Stderr, "stdin is the MCP transport and cannot be an output source")
		return 2
	}

	a, err := newApp(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	server, err := mcp.NewServer(mcp.Options{
		Manager: a.manager,
		Outputs: func(ctx context.Context) ([]geometry.Output, error) {
			return sources.resolve(ctx, nil, a.cfg.Display)
		},
		Logger: a.logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create MCP server: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
