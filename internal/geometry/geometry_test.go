package geometry

import (
	"errors"
	"testing"

	"github.com/1broseidon/spanwall/internal/transform"
)

func TestNormalize_FiltersInactiveAndSwapsRotated(t *testing.T) {
	outputs := []Output{
		{Name: "DP-1", Width: 1080, Height: 1920, X: 0, Y: 0, Transform: transform.Rot90, Active: true},
		{Name: "HDMI-A-1", Width: 1920, Height: 1080, X: 1920, Y: 0, Active: true, Scale: 1.5},
		{Name: "eDP-1", Width: 2560, Height: 1600, Active: false},
	}

	got, err := Normalize(outputs)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active outputs, got %d", len(got))
	}
	if got[0].EffectiveWidth != 1920 || got[0].EffectiveHeight != 1080 {
		t.Fatalf("DP-1 effective = %dx%d, want 1920x1080", got[0].EffectiveWidth, got[0].EffectiveHeight)
	}
	if got[0].Scale != 1.0 {
		t.Fatalf("DP-1 scale = %v, want default 1.0", got[0].Scale)
	}
	if got[1].EffectiveWidth != 1920 || got[1].Scale != 1.5 {
		t.Fatalf("HDMI-A-1 = %+v, want unrotated with scale 1.5", got[1])
	}
}

func TestNormalize_ZeroSizeActiveOutputIsReported(t *testing.T) {
	outputs := []Output{
		{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
		{Name: "DP-2", Width: 0, Height: 1080, Active: true},
	}
	_, err := Normalize(outputs)
	var geomErr *InvalidGeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("expected InvalidGeometryError, got %v", err)
	}
	if geomErr.Output != "DP-2" || geomErr.Width != 0 || geomErr.Height != 1080 {
		t.Fatalf("unexpected error context: %+v", geomErr)
	}
}

func TestNormalize_ZeroSizeInactiveOutputIsIgnored(t *testing.T) {
	outputs := []Output{
		{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
		{Name: "DP-2", Active: false},
	}
	got, err := Normalize(outputs)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "DP-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNormalize_DuplicateNames(t *testing.T) {
	outputs := []Output{
		{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
		{Name: "DP-1", Width: 1920, Height: 1080, X: 1920, Active: true},
	}
	_, err := Normalize(outputs)
	var geomErr *InvalidGeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("expected InvalidGeometryError, got %v", err)
	}
}

func TestNormalize_EmptySet(t *testing.T) {
	tests := []struct {
		name    string
		outputs []Output
		total   int
	}{
		{"nil", nil, 0},
		{"all disabled", []Output{{Name: "DP-1", Width: 1920, Height: 1080}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.outputs)
			var emptyErr *EmptyOutputSetError
			if !errors.As(err, &emptyErr) {
				t.Fatalf("expected EmptyOutputSetError, got %v", err)
			}
			if emptyErr.Total != tt.total {
				t.Fatalf("Total = %d, want %d", emptyErr.Total, tt.total)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	outputs := []Output{
		{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
		{Name: "DP-2", Width: 1920, Height: 1080, Active: true},
	}

	got, err := ApplyOverrides(outputs, map[string]transform.Transform{"DP-2": transform.Rot270})
	if err != nil {
		t.Fatalf("ApplyOverrides error: %v", err)
	}
	if got[1].Transform != transform.Rot270 {
		t.Fatalf("DP-2 transform = %s, want 270", got[1].Transform)
	}
	if outputs[1].Transform != transform.Normal {
		t.Fatal("ApplyOverrides mutated its input")
	}

	_, err = ApplyOverrides(outputs, map[string]transform.Transform{"HDMI-A-9": transform.Rot90})
	var geomErr *InvalidGeometryError
	if !errors.As(err, &geomErr) || geomErr.Output != "HDMI-A-9" {
		t.Fatalf("expected InvalidGeometryError for unknown output, got %v", err)
	}
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		tr      transform.Transform
		wantErr bool
	}{
		{"DP-1:90", "DP-1", transform.Rot90, false},
		{"HDMI-A-1:flipped-270", "HDMI-A-1", transform.Flipped270, false},
		{"DP-1", "", transform.Normal, true},
		{":90", "", transform.Normal, true},
		{"DP-1:", "", transform.Normal, true},
		{"DP-1:45", "", transform.Normal, true},
	}
	for _, tt := range tests {
		name, tr, err := ParseOverride(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOverride(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOverride(%q) error: %v", tt.input, err)
			continue
		}
		if name != tt.name || tr != tt.tr {
			t.Errorf("ParseOverride(%q) = %q,%s want %q,%s", tt.input, name, tr, tt.name, tt.tr)
		}
	}
}

func TestDescribe_IncludesInactive(t *testing.T) {
	rows := Describe([]Output{
		{Name: "DP-1", Width: 1080, Height: 1920, Transform: transform.Rot270, Active: true},
		{Name: "eDP-1", Width: 2560, Height: 1600},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].EffectiveWidth != 1920 {
		t.Fatalf("rotated effective width = %d, want 1920", rows[0].EffectiveWidth)
	}
	if rows[1].Active || rows[1].Scale != 1.0 {
		t.Fatalf("inactive row = %+v", rows[1])
	}
}
