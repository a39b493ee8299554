// Package compositor renders one background raster per output from a single
// source image, either spanning the whole canvas or fitting each output
// independently.
package compositor

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Mode selects how the source image is mapped onto outputs.
type Mode string

const (
	ModeStretch Mode = "stretch" // one image resampled across the whole canvas
	ModeFill    Mode = "fill"    // per output, cover and centre-crop
	ModeFit     Mode = "fit"     // per output, contain and pad
	ModeCenter  Mode = "center"  // per output, unscaled and centred
	ModeTile    Mode = "tile"    // per output, unscaled and repeated from the top-left
)

// Modes lists every supported mode.
var Modes = []Mode{ModeStretch, ModeFill, ModeFit, ModeCenter, ModeTile}

// ParseMode converts a mode name. "stretched" and "span" are accepted as
// aliases for stretch.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStretch, ModeFill, ModeFit, ModeCenter, ModeTile:
		return m, nil
	case "stretched", "span":
		return ModeStretch, nil
	}
	return "", fmt.Errorf("invalid mode %q (valid: stretch, fill, fit, center, tile)", s)
}

// PerOutput reports whether the mode renders each output independently.
func (m Mode) PerOutput() bool {
	return m != ModeStretch
}

// Filter names a resampling kernel.
type Filter string

const (
	FilterNearest        Filter = "nearest"
	FilterApproxBiLinear Filter = "approx-bilinear"
	FilterBiLinear       Filter = "bilinear"
	FilterCatmullRom     Filter = "catmull-rom"
	FilterLanczos        Filter = "lanczos"
)

// DefaultFilter is used when a spec leaves the filter empty.
const DefaultFilter = FilterCatmullRom

// ParseFilter converts a filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return DefaultFilter, nil
	case FilterNearest, FilterApproxBiLinear, FilterBiLinear, FilterCatmullRom, FilterLanczos:
		return f, nil
	case "catmullrom", "bicubic":
		return FilterCatmullRom, nil
	}
	return "", fmt.Errorf("invalid filter %q (valid: nearest, approx-bilinear, bilinear, catmull-rom, lanczos)", s)
}

// Offset shifts the placed source image, in source-image pixels.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Spec is the caller's background request. It is treated as immutable once
// passed to the compositor.
type Spec struct {
	Mode   Mode
	Source string
	Offset Offset
	// Scale multiplies the source's native size before placement in stretch
	// mode. Zero means "stretch to the canvas".
	Scale      float64
	Background color.RGBA
	Filter     Filter
}

// DefaultBackground is opaque black.
var DefaultBackground = color.RGBA{A: 255}

// Validate checks the spec's enumerations and numeric ranges.
func (s Spec) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if _, err := ParseFilter(string(s.Filter)); err != nil {
		return err
	}
	if s.Scale < 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) {
		return fmt.Errorf("invalid scale %g: must be a positive finite number", s.Scale)
	}
	return nil
}
