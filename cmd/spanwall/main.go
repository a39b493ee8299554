package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/config"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/store"
	"github.com/1broseidon/spanwall/internal/wallpaper"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "outputs":
		os.Exit(runOutputs(os.Args[2:]))
	case "cleanup":
		os.Exit(runCleanup(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: spanwall <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  apply <image>       Render an image across all outputs and store it")
	fmt.Fprintln(w, "  restore             Restore the stored background, re-rendering changed outputs")
	fmt.Fprintln(w, "  outputs             List outputs and their effective geometry")
	fmt.Fprintln(w, "  cleanup             Delete rasters the stored background no longer uses")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'spanwall <command> --help' for command-specific options.")
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		common       commonFlags
		sources      sourceFlags
		orientations stringList
	)
	common.register(fs)
	sources.register(fs)
	mode := fs.String("mode", "", "Placement mode: stretch, fill, fit, center, tile (default from config)")
	offsetX := fs.Int("offset-x", 0, "Horizontal source offset in pixels (stretch mode)")
	offsetY := fs.Int("offset-y", 0, "Vertical source offset in pixels (stretch mode)")
	scale := fs.Float64("scale", 0, "Source scale factor (stretch mode; default stretches to the canvas)")
	background := fs.String("background", "", "Fill colour as #rrggbb or #rrggbbaa (default from config)")
	filter := fs.String("filter", "", "Resampling filter: nearest, approx-bilinear, bilinear, catmull-rom, lanczos")
	fs.Var(&orientations, "orientation", "Transform override NAME:TRANSFORM (repeatable)")
	showCommands := fs.Bool("commands", false, "Print the swaymsg/swaybg commands that display the result")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: spanwall apply [options] <image>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	req := wallpaper.ApplyRequest{
		Image:  fs.Arg(0),
		Offset: compositor.Offset{X: *offsetX, Y: *offsetY},
		Scale:  *scale,
	}
	var err error
	if *mode != "" {
		if req.Mode, err = compositor.ParseMode(*mode); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	if *filter != "" {
		if req.Filter, err = compositor.ParseFilter(*filter); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	if *background != "" {
		bg, err := compositor.ParseColor(*background)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		req.Background = &bg
	}
	if req.Overrides, err = wallpaper.ParseOrientations(orientations); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := sources.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	a, err := newApp(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if req.Outputs, err = sources.resolve(ctx, os.Stdin, a.cfg.Display); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	res, err := a.manager.Apply(ctx, req)
	var partial *compositor.PartialRenderError
	if err != nil && !errors.As(err, &partial) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	printEntries(os.Stdout, res.Entries())
	if *showCommands {
		printCommands(os.Stdout, res)
	}
	if partial != nil {
		fmt.Fprintln(os.Stderr, partial)
		return 1
	}
	return 0
}

func runRestore(args []string) int {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		common  commonFlags
		sources sourceFlags
	)
	common.register(fs)
	sources.register(fs)
	dropStale := fs.Bool("drop-stale", false, "Forget stored outputs that are no longer connected")
	stored := fs.Bool("stored", false, "Restore against the stored geometry instead of live outputs")
	showCommands := fs.Bool("commands", false, "Print the swaymsg/swaybg commands that display the result")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: spanwall restore [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without a source flag the live sway or X11 outputs are used; when no")
		fmt.Fprintln(os.Stderr, "session is found the stored geometry is restored as-is.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 2
	}
	if err := sources.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *stored && sources.explicit() {
		fmt.Fprintln(os.Stderr, "--stored cannot be combined with an output source")
		return 2
	}

	a, err := newApp(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	req := wallpaper.RestoreRequest{DropStale: *dropStale}
	if !*stored {
		req.Outputs, err = sources.resolve(ctx, os.Stdin, a.cfg.Display)
		if errors.Is(err, errNoSession) {
			a.logger.Info("no display session found; restoring stored geometry")
			err = nil
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	res, err := a.manager.Restore(ctx, req)
	var (
		partial *compositor.PartialRenderError
		stale   *store.StaleConfigError
	)
	if err != nil && !errors.As(err, &partial) && !errors.As(err, &stale) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, t := range res.Plan.Tasks {
		a.logger.Debug("restore", "output", t.Output, "action", string(t.Action), "reason", t.Reason)
	}
	printEntries(os.Stdout, res.Entries())
	if *showCommands {
		printCommands(os.Stdout, res)
	}
	if stale != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (use --drop-stale to forget them)\n", stale)
	}
	if partial != nil {
		fmt.Fprintln(os.Stderr, partial)
		return 1
	}
	return 0
}

func runOutputs(args []string) int {
	fs := flag.NewFlagSet("outputs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		common  commonFlags
		sources sourceFlags
	)
	common.register(fs)
	sources.register(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	stored := fs.Bool("stored", false, "List the geometry stored with the last background")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := sources.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	a, err := newApp(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var outputs []geometry.Output
	if *stored {
		outputs, err = a.manager.StoredOutputs()
		if err == nil && outputs == nil {
			err = wallpaper.ErrNoRecord
		}
	} else {
		outputs, err = sources.resolve(ctx, os.Stdin, a.cfg.Display)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	rows := a.manager.ListOutputs(outputs)
	if *asJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	fmt.Print(formatOutputs(rows, isTerminal(os.Stdout)))
	return 0
}

func runCleanup(args []string) int {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	a, err := newApp(common)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	removed, err := a.manager.Cleanup()
	var total uint64
	for _, r := range removed {
		fmt.Printf("removed %s (%s)\n", r.Path, humanize.Bytes(uint64(r.Size)))
		total += uint64(r.Size)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d files, %s freed\n", len(removed), humanize.Bytes(total))
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  spanwall config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  spanwall config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  spanwall config explain [--path PATH] <yaml.path>")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/spanwall/config.yaml)")
	printDefaults := fs.Bool("defaults", false, "Print built-in defaults (print only)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	if args[0] == "print" && *printDefaults {
		return printYAML(config.DefaultConfig())
	}

	var (
		res *config.LoadResult
		err error
	)
	switch args[0] {
	case "validate", "print", "explain":
		if *path == "" {
			res, err = config.LoadWithSources()
		} else {
			res, err = config.LoadFromPath(*path)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch args[0] {
	case "validate":
		fmt.Println("config: ok")
		return 0
	case "print":
		return printYAML(res.Config)
	default:
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("path: %s\n", fs.Arg(0))
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0
	}
}

func printYAML(v any) int {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

// printEntries lists the stored raster for each current output.
func printEntries(w io.Writer, entries []store.Entry) {
	for _, e := range entries {
		size := "?"
		if info, err := os.Stat(e.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t(%s)\n", e.Output.Name, e.Rect.Width, e.Rect.Height, e.Path, size)
	}
}

func printCommands(w io.Writer, res *wallpaper.Result) {
	for _, c := range wallpaper.Commands(res) {
		fmt.Fprintln(w, c.String())
	}
}
