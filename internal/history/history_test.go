package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
}

func TestLogger_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	l, err := New(Config{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Log(ActionApply, map[string]any{"mode": "fill"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled logger created %s", path)
	}

	var nilLogger *Logger
	nilLogger.Log(ActionApply, nil)
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close error: %v", err)
	}
}

func TestLogger_WritesSortedDetails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.log")
	l, err := New(Config{Enabled: true, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.now = fixedClock
	l.Log(ActionApply, map[string]any{
		"outputs": []string{"DP-1", "DP-2"},
		"mode":    "stretch",
		"count":   2,
	})
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := `2026-03-04 05:06:07 [APPLY] count=2 mode="stretch" outputs="DP-1,DP-2"` + "\n"
	if string(data) != want {
		t.Fatalf("entry = %q, want %q", data, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("permissions = %v, want 0600", perm)
	}
}

func TestLogger_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	l, err := New(Config{Enabled: true, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.now = fixedClock
	l.maxBytes = 10

	for _, a := range []Action{ActionApply, ActionRestore, ActionCleanup, ActionApply} {
		l.Log(a, nil)
	}
	l.Close()

	current, _ := os.ReadFile(path)
	first, _ := os.ReadFile(path + ".1")
	second, _ := os.ReadFile(path + ".2")
	if !strings.Contains(string(current), "[APPLY]") {
		t.Fatalf("current = %q", current)
	}
	if !strings.Contains(string(first), "[CLEANUP]") {
		t.Fatalf(".1 = %q", first)
	}
	if !strings.Contains(string(second), "[RESTORE]") {
		t.Fatalf(".2 = %q", second)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatal("kept more rotated files than MaxFiles")
	}
}

func TestLogger_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	if err := os.WriteFile(path, []byte("old\n"), 0600); err != nil {
		t.Fatal(err)
	}
	l, err := New(Config{Enabled: true, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.now = fixedClock
	l.Log(ActionCleanup, map[string]any{"removed": 0})
	l.Close()

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "old\n") || !strings.Contains(string(data), "[CLEANUP] removed=0") {
		t.Fatalf("history = %q", data)
	}
}
