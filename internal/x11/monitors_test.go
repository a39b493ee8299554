package x11

import (
	"testing"

	"github.com/1broseidon/spanwall/internal/transform"
)

func TestTransformFor(t *testing.T) {
	tests := []struct {
		name     string
		rotation uint16
		want     transform.Transform
	}{
		{"normal", rotate0, transform.Normal},
		{"left", rotate90, transform.Rot270},
		{"right", rotate270, transform.Rot90},
		{"inverted", rotate180, transform.Rot180},
		{"reflect x", rotate0 | reflectX, transform.Flipped},
		{"reflect y", rotate0 | reflectY, transform.Flipped180},
		{"reflect both", rotate0 | reflectX | reflectY, transform.Rot180},
		{"left then reflect x", rotate90 | reflectX, transform.Flipped90},
		{"left then reflect y", rotate90 | reflectY, transform.Flipped270},
		{"right then reflect x", rotate270 | reflectX, transform.Flipped270},
		{"right then reflect y", rotate270 | reflectY, transform.Flipped90},
		{"inverted then reflect x", rotate180 | reflectX, transform.Flipped180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transformFor(tt.rotation); got != tt.want {
				t.Errorf("transformFor(%#x) = %s, want %s", tt.rotation, got, tt.want)
			}
		})
	}
}

func TestOutputFromCrtc(t *testing.T) {
	// xrandr --output HDMI-1 --rotate right
	o := outputFromCrtc("HDMI-1", 1920, 0, 1080, 1920, rotate270)
	if o.Width != 1920 || o.Height != 1080 {
		t.Fatalf("native size = %dx%d, want 1920x1080", o.Width, o.Height)
	}
	if o.X != 1920 || o.Transform != transform.Rot90 || !o.Active {
		t.Fatalf("output = %+v", o)
	}

	if o := outputFromCrtc("DP-1", 0, 0, 0, 0, rotate0); o.Active {
		t.Fatalf("zero-size CRTC reported active: %+v", o)
	}
}
