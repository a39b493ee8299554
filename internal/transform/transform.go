// Package transform models output rotation/reflection and remaps rendered
// rasters between effective (display) orientation and the native framebuffer.
package transform

import (
	"fmt"
	"strings"
)

// Transform is one of the eight output transforms a compositor can apply.
// Flipped variants mirror horizontally first and then rotate clockwise.
type Transform int

const (
	Normal Transform = iota
	Rot90
	Rot180
	Rot270
	Flipped
	Flipped90
	Flipped180
	Flipped270
)

// All lists every transform in declaration order.
var All = []Transform{Normal, Rot90, Rot180, Rot270, Flipped, Flipped90, Flipped180, Flipped270}

var names = [...]string{
	Normal:     "normal",
	Rot90:      "90",
	Rot180:     "180",
	Rot270:     "270",
	Flipped:    "flipped",
	Flipped90:  "flipped-90",
	Flipped180: "flipped-180",
	Flipped270: "flipped-270",
}

// String returns the sway name of the transform.
func (t Transform) String() string {
	if !t.Valid() {
		return fmt.Sprintf("transform(%d)", int(t))
	}
	return names[t]
}

// Valid reports whether t is one of the eight known transforms.
func (t Transform) Valid() bool {
	return t >= Normal && t <= Flipped270
}

// Parse converts a transform name into a Transform. Sway names ("90",
// "flipped-270") and rot-prefixed aliases ("rot90", "flipped-rot90") are
// accepted.
func Parse(s string) (Transform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "normal", "0", "rot0":
		return Normal, nil
	case "90", "rot90":
		return Rot90, nil
	case "180", "rot180":
		return Rot180, nil
	case "270", "rot270":
		return Rot270, nil
	case "flipped", "flipped-0":
		return Flipped, nil
	case "flipped-90", "flipped-rot90":
		return Flipped90, nil
	case "flipped-180", "flipped-rot180":
		return Flipped180, nil
	case "flipped-270", "flipped-rot270":
		return Flipped270, nil
	}
	return Normal, fmt.Errorf("invalid transform %q (valid: %s)", s, strings.Join(names[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (t Transform) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid transform %d", int(t))
	}
	return []byte(names[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Transform) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsFlipped reports whether the transform mirrors the framebuffer.
func (t Transform) IsFlipped() bool {
	return t >= Flipped && t <= Flipped270
}

// Rotation returns the clockwise quarter turns (0-3) applied after any flip.
func (t Transform) Rotation() int {
	return int(t) % 4
}

// SwapsAxes reports whether the transform exchanges width and height.
func (t Transform) SwapsAxes() bool {
	return t.Rotation()%2 == 1
}

// EffectiveSize returns the displayed size of a native w×h framebuffer under
// t. The mapping is its own inverse, so applying it to an effective size
// yields the native size again.
func EffectiveSize(w, h int, t Transform) (int, int) {
	if t.SwapsAxes() {
		return h, w
	}
	return w, h
}

// NativeSize returns the framebuffer size whose effective size under t is
// w×h.
func NativeSize(w, h int, t Transform) (int, int) {
	return EffectiveSize(w, h, t)
}
