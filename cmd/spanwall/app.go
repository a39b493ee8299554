package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/config"
	"github.com/1broseidon/spanwall/internal/history"
	"github.com/1broseidon/spanwall/internal/store"
	"github.com/1broseidon/spanwall/internal/wallpaper"
)

// commonFlags are accepted by every command that touches the store.
type commonFlags struct {
	configPath string
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/spanwall/config.yaml)")
	fs.BoolVar(&c.verbose, "verbose", false, "Log debug output to stderr")
}

// app holds the wired components for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	history *history.Logger
	manager *wallpaper.Manager
}

func newApp(flags commonFlags) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath == "" {
		cfg, err = config.Load()
	} else {
		var res *config.LoadResult
		res, err = config.LoadFromPath(flags.configPath)
		if res != nil {
			cfg = res.Config
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg, flags.verbose)

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory: %w", err)
	}

	hcfg := cfg.GetHistoryConfig()
	hist, err := history.New(history.Config{
		Enabled:   hcfg.Enabled,
		FilePath:  hcfg.File,
		MaxSizeMB: hcfg.MaxSizeMB,
		MaxFiles:  hcfg.MaxFiles,
	})
	if err != nil {
		logger.Warn("history log disabled", "error", err)
		hist = nil
	}

	bg := cfg.BackgroundColor()
	manager := wallpaper.New(wallpaper.Options{
		Store:      store.New(stateDir),
		Compositor: compositor.New(compositor.Options{Workers: cfg.Workers, Logger: logger}),
		History:    hist,
		Logger:     logger,
		Mode:       cfg.DefaultMode(),
		Background: &bg,
		Filter:     cfg.DefaultFilter(),
	})

	return &app{cfg: cfg, logger: logger, history: hist, manager: manager}, nil
}

func (a *app) Close() {
	if err := a.history.Close(); err != nil {
		a.logger.Warn("failed to close history log", "error", err)
	}
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
