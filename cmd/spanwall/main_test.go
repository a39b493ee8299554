package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/transform"
)

func TestLoadOutputs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []geometry.Output
	}{
		{
			name: "yaml list",
			in: `
- name: DP-1
  width: 1920
  height: 1080
- name: HDMI-A-1
  width: 1920
  height: 1080
  x: 1920
  transform: 90
  active: false
`,
			want: []geometry.Output{
				{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
				{Name: "HDMI-A-1", Width: 1920, Height: 1080, X: 1920, Transform: transform.Rot90},
			},
		},
		{
			name: "json mapping",
			in:   `{"outputs": [{"name": "eDP-1", "width": 2560, "height": 1600, "scale": 2, "transform": "flipped"}]}`,
			want: []geometry.Output{
				{Name: "eDP-1", Width: 2560, Height: 1600, Scale: 2, Transform: transform.Flipped, Active: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadOutputs(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("loadOutputs error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d outputs, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("output %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadOutputs_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"empty":         "  \n",
		"scalar":        "hello",
		"bad transform": "- name: DP-1\n  width: 1\n  height: 1\n  transform: sideways\n",
		"bad yaml":      "- name: [",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := loadOutputs(strings.NewReader(in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSourceFlags_Validate(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var s sourceFlags
	s.register(fs)
	if err := fs.Parse([]string{"--x11", "--sway-config", "/etc/sway/config"}); err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := s.validate(); err == nil {
		t.Fatal("expected mutually exclusive error")
	}
	if !s.explicit() {
		t.Fatal("explicit() = false with flags set")
	}
}

func TestSourceFlags_Resolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outputs.yaml")
	if err := os.WriteFile(path, []byte("- {name: DP-1, width: 800, height: 600}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := sourceFlags{outputsFile: path}
	got, err := s.resolve(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "DP-1" || !got[0].Active {
		t.Fatalf("resolve = %+v", got)
	}

	s = sourceFlags{swayJSON: "-"}
	stdin := strings.NewReader(`[{"name":"DP-2","active":true,"rect":{"x":0,"y":0,"width":640,"height":480},"scale":1,"transform":"normal"}]`)
	got, err = s.resolve(context.Background(), stdin, "")
	if err != nil {
		t.Fatalf("resolve(stdin) error: %v", err)
	}
	if len(got) != 1 || got[0].Width != 640 {
		t.Fatalf("resolve(stdin) = %+v", got)
	}

	s = sourceFlags{outputsFile: filepath.Join(dir, "missing.yaml")}
	if _, err := s.resolve(context.Background(), nil, ""); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file error = %v", err)
	}
}

func TestSourceFlags_NoSession(t *testing.T) {
	t.Setenv("SWAYSOCK", "")
	t.Setenv("DISPLAY", "")
	var s sourceFlags
	if _, err := s.resolve(context.Background(), nil, ""); !errors.Is(err, errNoSession) {
		t.Fatalf("resolve error = %v, want errNoSession", err)
	}
}

func TestFormatOutputs(t *testing.T) {
	outputs := []geometry.Output{
		{Name: "DP-1", Width: 1920, Height: 1080, Active: true},
		{Name: "HDMI-A-1", Width: 1920, Height: 1080, X: 1920, Scale: 1.5, Transform: transform.Rot90, Active: true},
		{Name: "VGA-1", Width: 1024, Height: 768},
	}
	got := formatOutputs(geometry.Describe(outputs), false)
	want := strings.Join([]string{
		"NAME      ACTIVE  MODE       POSITION  SCALE  TRANSFORM  EFFECTIVE",
		"DP-1      yes     1920x1080  0,0       1      normal     1920x1080",
		"HDMI-A-1  yes     1920x1080  1920,0    1.5    90         1080x1920",
		"VGA-1     no      1024x768   0,0       1      normal     -",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("formatOutputs =\n%s\nwant\n%s", got, want)
	}
}

func TestStringList(t *testing.T) {
	var l stringList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&l, "orientation", "")
	if err := fs.Parse([]string{"--orientation", "DP-1:90", "--orientation", "DP-2:180"}); err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(l) != 2 || l.String() != "DP-1:90,DP-2:180" {
		t.Fatalf("stringList = %v", l)
	}
}
