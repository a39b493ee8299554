package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDir_UsesXDGConfigHomeWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(td, "spanwall"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigDir_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "spanwall"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestDataDirAndHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")

	got, err := HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error: %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "spanwall", "history.log"); got != want {
		t.Fatalf("HistoryPath() = %q, want %q", got, want)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "spanwall"); dir != want {
		t.Fatalf("DataDir() = %q, want %q", dir, want)
	}
}

func TestConfigPathAndStateDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error: %v", err)
	}
	if !strings.HasSuffix(cfg, "/spanwall/config.yaml") {
		t.Fatalf("ConfigPath() = %q, missing suffix", cfg)
	}

	state, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error: %v", err)
	}
	if !strings.HasSuffix(state, "/spanwall/backgrounds") {
		t.Fatalf("StateDir() = %q, missing suffix", state)
	}
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := map[string]string{
		"":               "",
		"~":              home,
		"~/walls/a.png":  filepath.Join(home, "walls", "a.png"),
		"/abs/./b.png":   "/abs/b.png",
		"rel/../c.png":   "c.png",
		"  ~/spaced  ":   filepath.Join(home, "spaced"),
		"~user/not-home": "~user/not-home",
	}
	for in, want := range tests {
		got, err := Expand(in)
		if err != nil {
			t.Fatalf("Expand(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("Expand(%q) = %q, want %q", in, got, want)
		}
	}
}
