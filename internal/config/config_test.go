package config

import (
	"errors"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/spanwall/internal/compositor"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.DefaultMode() != compositor.ModeStretch {
		t.Fatalf("default mode = %q, want stretch", cfg.DefaultMode())
	}
	if cfg.BackgroundColor() != compositor.DefaultBackground {
		t.Fatalf("default background = %v, want opaque black", cfg.BackgroundColor())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Mode != "stretch" || len(res.Files) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Filter != string(compositor.DefaultFilter) {
		t.Fatalf("expected filter %q, got %q", compositor.DefaultFilter, res.Config.Filter)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	data := strings.Join([]string{
		"mode: fill",
		`background: "#336699"`,
		"filter: lanczos",
		"workers: 4",
		"log_level: debug",
		"history:",
		"  enabled: true",
		"  max_files: 5",
		"",
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, t.TempDir(), "config.yaml", data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.DefaultMode() != compositor.ModeFill || cfg.DefaultFilter() != compositor.FilterLanczos || cfg.Workers != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got, want := cfg.BackgroundColor(), (color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}); got != want {
		t.Fatalf("background = %v, want %v", got, want)
	}
	if !cfg.History.Enabled || cfg.History.MaxFiles != 5 || cfg.History.MaxSizeMB != DefaultHistoryMaxSizeMB {
		t.Fatalf("history = %+v", cfg.History)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "hotkey: Mod4-t\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "log_level: info\nmode: zoom\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "mode" || verr.Source.Line != 2 {
		t.Fatalf("validation error = %+v", verr)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("error %q lacks line context", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "zoom" }, "mode"},
		{"bad colour", func(c *Config) { c.Background = "#12" }, "background"},
		{"bad filter", func(c *Config) { c.Filter = "sinc" }, "filter"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative files", func(c *Config) { c.History.MaxFiles = -1 }, "history.max_files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %s", err, tt.path)
			}
		})
	}
}

func TestLoadFromPath_Include(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", "mode: fit\nfilter: bilinear\n")
	path := writeConfig(t, dir, "config.yaml", "include: base.yaml\nfilter: nearest\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Mode != "fit" || res.Config.Filter != "nearest" {
		t.Fatalf("config = %+v, want mode from include and filter from main file", res.Config)
	}
	if len(res.Files) != 2 {
		t.Fatalf("files = %v, want 2", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")
	if _, err := LoadFromPath(filepath.Join(dir, "a.yaml")); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "workers: 2\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "workers")
	if err != nil {
		t.Fatalf("explain workers: %v", err)
	}
	if val != 2 || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("explain workers = %v %+v", val, src)
	}

	val, src, err = Explain(res, "history.max_size_mb")
	if err != nil {
		t.Fatalf("explain history.max_size_mb: %v", err)
	}
	if val != DefaultHistoryMaxSizeMB || src.Kind != SourceDefault {
		t.Fatalf("explain history.max_size_mb = %v %+v", val, src)
	}

	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatal("expected error for unsupported path")
	}
}

func TestGetHistoryConfigDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	cfg.History.MaxSizeMB = 0
	h := cfg.GetHistoryConfig()
	if h.File != "/data/spanwall/history.log" || h.MaxSizeMB != DefaultHistoryMaxSizeMB || h.MaxFiles != DefaultHistoryMaxFiles {
		t.Fatalf("history = %+v", h)
	}
}

func TestResolveStateDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	cfg := DefaultConfig()
	dir, err := cfg.ResolveStateDir()
	if err != nil || dir != "/cfg/spanwall/backgrounds" {
		t.Fatalf("ResolveStateDir() = %q, %v", dir, err)
	}
	cfg.StateDir = "/srv/walls/"
	if dir, _ := cfg.ResolveStateDir(); dir != "/srv/walls" {
		t.Fatalf("ResolveStateDir() = %q, want /srv/walls", dir)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
