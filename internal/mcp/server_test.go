package mcp

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/store"
	"github.com/1broseidon/spanwall/internal/transform"
	"github.com/1broseidon/spanwall/internal/wallpaper"
)

type fakeOutputs struct {
	outputs []geometry.Output
	err     error
}

func (f *fakeOutputs) get(context.Context) ([]geometry.Output, error) {
	return f.outputs, f.err
}

func newTestServer(t *testing.T, outputs []geometry.Output) (*Server, *fakeOutputs) {
	t.Helper()
	src := &fakeOutputs{outputs: outputs}
	mgr := wallpaper.New(wallpaper.Options{Store: store.New(filepath.Join(t.TempDir(), "backgrounds"))})
	s, err := NewServer(Options{Manager: mgr, Outputs: src.get})
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return s, src
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "wall.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func pair() []geometry.Output {
	return []geometry.Output{
		{Name: "DP-1", Width: 64, Height: 32, Active: true},
		{Name: "DP-2", Width: 64, Height: 32, X: 64, Active: true},
		{Name: "DP-3", Width: 64, Height: 32, X: 128},
	}
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	if _, err := NewServer(Options{}); err == nil {
		t.Fatal("expected error without a manager")
	}
	mgr := wallpaper.New(wallpaper.Options{Store: store.New(t.TempDir())})
	if _, err := NewServer(Options{Manager: mgr}); err == nil {
		t.Fatal("expected error without an output source")
	}
}

func TestHandleListOutputs(t *testing.T) {
	outputs := pair()
	outputs[1].Transform = transform.Rot90
	s, _ := newTestServer(t, outputs)

	_, out, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{})
	if err != nil {
		t.Fatalf("handleListOutputs error: %v", err)
	}
	if len(out.Outputs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(out.Outputs))
	}
	dp2 := out.Outputs[1]
	if dp2.Transform != "90" || dp2.EffectiveWidth != 32 || dp2.EffectiveHeight != 64 || dp2.Scale != 1 {
		t.Errorf("DP-2 = %+v", dp2)
	}
	if out.Outputs[2].Active {
		t.Errorf("DP-3 reported active")
	}

	if _, _, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{Stored: true}); !errors.Is(err, wallpaper.ErrNoRecord) {
		t.Fatalf("stored listing before apply: err = %v, want ErrNoRecord", err)
	}
}

func TestHandleListOutputs_SourceError(t *testing.T) {
	s, src := newTestServer(t, nil)
	src.err = errors.New("no compositor")
	if _, _, err := s.handleListOutputs(context.Background(), nil, ListOutputsInput{}); err == nil {
		t.Fatal("expected source error")
	}
}

func TestApplyRestoreCleanup(t *testing.T) {
	s, src := newTestServer(t, pair())
	wall := writePNG(t, 128, 32)

	_, applied, err := s.handleApplyBackground(context.Background(), nil, ApplyBackgroundInput{
		Image:        wall,
		Mode:         "fill",
		Orientations: []string{"DP-2:180"},
	})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if applied.Mode != "fill" || len(applied.Entries) != 2 || len(applied.Failures) != 0 {
		t.Fatalf("apply output = %+v", applied)
	}
	if got := applied.Commands[0].Command; got != "swaymsg output DP-2 transform 180" {
		t.Errorf("first command = %q", got)
	}

	// Drop DP-2 from the live set.
	src.outputs = pair()[:1]
	_, restored, err := s.handleRestoreBackgrounds(context.Background(), nil, RestoreBackgroundsInput{})
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	if len(restored.Stale) != 1 || restored.Stale[0] != "DP-2" || restored.Dropped {
		t.Fatalf("restore stale = %v dropped = %v", restored.Stale, restored.Dropped)
	}
	if len(restored.Tasks) != 1 || restored.Tasks[0].Action != string(store.ActionReuse) {
		t.Fatalf("restore tasks = %+v", restored.Tasks)
	}

	_, restored, err = s.handleRestoreBackgrounds(context.Background(), nil, RestoreBackgroundsInput{DropStale: true})
	if err != nil {
		t.Fatalf("restore(drop_stale) error: %v", err)
	}
	if !restored.Dropped {
		t.Fatal("drop_stale not reported")
	}

	_, cleaned, err := s.handleCleanupBackgrounds(context.Background(), nil, CleanupBackgroundsInput{})
	if err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if len(cleaned.Removed) != 1 || !strings.HasSuffix(cleaned.Removed[0], "DP-2.png") {
		t.Fatalf("cleanup removed %v", cleaned.Removed)
	}
	if cleaned.Bytes <= 0 || cleaned.Freed == "" {
		t.Fatalf("cleanup size = %d (%q)", cleaned.Bytes, cleaned.Freed)
	}
}

func TestApplyRequest(t *testing.T) {
	req, err := applyRequest(ApplyBackgroundInput{
		Image:        "wall.png",
		Mode:         "span",
		OffsetX:      10,
		OffsetY:      -4,
		Scale:        1.5,
		Background:   "#102030",
		Filter:       "lanczos",
		Orientations: []string{"DP-1:flipped"},
	})
	if err != nil {
		t.Fatalf("applyRequest error: %v", err)
	}
	if req.Mode != compositor.ModeStretch || req.Filter != compositor.FilterLanczos {
		t.Errorf("mode/filter = %s/%s", req.Mode, req.Filter)
	}
	if req.Offset != (compositor.Offset{X: 10, Y: -4}) || req.Scale != 1.5 {
		t.Errorf("offset/scale = %+v/%v", req.Offset, req.Scale)
	}
	if req.Background == nil || *req.Background != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}) {
		t.Errorf("background = %v", req.Background)
	}
	if req.Overrides["DP-1"] != transform.Flipped {
		t.Errorf("overrides = %v", req.Overrides)
	}

	for name, in := range map[string]ApplyBackgroundInput{
		"missing image": {},
		"bad mode":      {Image: "a.png", Mode: "zoom"},
		"bad filter":    {Image: "a.png", Filter: "sinc"},
		"bad color":     {Image: "a.png", Background: "#zz0000"},
		"bad override":  {Image: "a.png", Orientations: []string{"DP-1"}},
	} {
		if _, err := applyRequest(in); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSplitPartial(t *testing.T) {
	partial := &compositor.PartialRenderError{
		Rendered: []string{"DP-1"},
		Failures: []compositor.OutputFailure{{Output: "DP-2", Err: errors.New("zero area")}},
	}
	stale := &store.StaleConfigError{Outputs: []string{"DP-9"}}

	failures, err := splitPartial(errors.Join(partial, nil))
	if err != nil || len(failures) != 1 || !strings.Contains(failures[0], "DP-2") {
		t.Fatalf("splitPartial(partial) = %v, %v", failures, err)
	}

	if _, err := splitPartial(withoutStale(errors.Join(partial, stale))); err != nil {
		t.Fatalf("partial+stale after withoutStale: %v", err)
	}

	other := errors.New("disk full")
	if _, err := splitPartial(errors.Join(partial, other)); err == nil {
		t.Fatal("unrelated error was swallowed")
	}
	if err := withoutStale(stale); err != nil {
		t.Fatalf("withoutStale(stale) = %v", err)
	}
}
