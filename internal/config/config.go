package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/paths"
)

// HistoryConfig configures the action history log.
type HistoryConfig struct {
	// Enabled turns history logging on/off
	Enabled bool `yaml:"enabled"`
	// File is the log file path (default: ~/.local/share/spanwall/history.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

const (
	DefaultHistoryMaxSizeMB = 10
	DefaultHistoryMaxFiles  = 3
)

// Config holds the application configuration.
type Config struct {
	Mode       string        `yaml:"mode"`
	Background string        `yaml:"background"`
	Filter     string        `yaml:"filter"`
	StateDir   string        `yaml:"state_dir,omitempty"`
	Workers    int           `yaml:"workers"`
	LogLevel   string        `yaml:"log_level"`
	Display    string        `yaml:"display,omitempty"`
	History    HistoryConfig `yaml:"history"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:       string(compositor.ModeStretch),
		Background: "#000000",
		Filter:     string(compositor.DefaultFilter),
		Workers:    0, // one per output, capped at GOMAXPROCS
		LogLevel:   "info",
		History: HistoryConfig{
			Enabled:   false,
			MaxSizeMB: DefaultHistoryMaxSizeMB,
			MaxFiles:  DefaultHistoryMaxFiles,
		},
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := compositor.ParseMode(c.Mode); err != nil {
		return &ValidationError{Path: "mode", Err: err}
	}
	if _, err := compositor.ParseColor(c.Background); err != nil {
		return &ValidationError{Path: "background", Err: err}
	}
	if _, err := compositor.ParseFilter(c.Filter); err != nil {
		return &ValidationError{Path: "filter", Err: err}
	}
	if c.Workers < 0 {
		return &ValidationError{Path: "workers", Err: fmt.Errorf("workers must be >= 0")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.History.MaxSizeMB < 0 {
		return &ValidationError{Path: "history.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.History.MaxFiles < 0 {
		return &ValidationError{Path: "history.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// BackgroundColor returns the parsed background colour, falling back to
// opaque black.
func (c *Config) BackgroundColor() color.RGBA {
	bg, err := compositor.ParseColor(c.Background)
	if err != nil {
		return compositor.DefaultBackground
	}
	return bg
}

// DefaultMode returns the configured default mode.
func (c *Config) DefaultMode() compositor.Mode {
	m, err := compositor.ParseMode(c.Mode)
	if err != nil {
		return compositor.ModeStretch
	}
	return m
}

// DefaultFilter returns the configured resampling filter.
func (c *Config) DefaultFilter() compositor.Filter {
	f, err := compositor.ParseFilter(c.Filter)
	if err != nil {
		return compositor.DefaultFilter
	}
	return f
}

// ResolveStateDir returns the directory for rasters and the record.
func (c *Config) ResolveStateDir() (string, error) {
	if strings.TrimSpace(c.StateDir) != "" {
		return paths.Expand(c.StateDir)
	}
	return paths.StateDir()
}

// GetHistoryConfig returns the history configuration with defaults applied.
func (c *Config) GetHistoryConfig() HistoryConfig {
	if c == nil {
		return HistoryConfig{}
	}
	cfg := c.History
	if cfg.File == "" {
		if p, err := paths.HistoryPath(); err == nil {
			cfg.File = p
		} else {
			// Last resort fallback - use current directory
			cfg.File = "history.log"
		}
	} else if p, err := paths.Expand(cfg.File); err == nil {
		cfg.File = p
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = DefaultHistoryMaxSizeMB
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = DefaultHistoryMaxFiles
	}
	return cfg
}

// ParseLogLevel maps a config level name onto a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
}
