// Package geometry normalizes output descriptors into rotation-aware
// effective geometry ready for layout.
package geometry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/spanwall/internal/transform"
)

// Output describes one display as reported by the window-management layer.
type Output struct {
	Name      string              `json:"name" yaml:"name"`
	Width     int                 `json:"width" yaml:"width"`
	Height    int                 `json:"height" yaml:"height"`
	X         int                 `json:"x" yaml:"x"`
	Y         int                 `json:"y" yaml:"y"`
	Scale     float64             `json:"scale,omitempty" yaml:"scale,omitempty"`
	Transform transform.Transform `json:"transform" yaml:"transform"`
	Active    bool                `json:"active" yaml:"active"`
}

// ScaleOrDefault returns the output scale, treating unset as 1.0.
func (o Output) ScaleOrDefault() float64 {
	if o.Scale <= 0 {
		return 1.0
	}
	return o.Scale
}

// Normalized is an active output together with its effective size.
type Normalized struct {
	Output
	EffectiveWidth  int `json:"effective_width"`
	EffectiveHeight int `json:"effective_height"`
}

// Normalize drops inactive outputs and computes effective sizes. Active
// outputs with a non-positive dimension or a duplicate name are reported
// rather than skipped.
func Normalize(outputs []Output) ([]Normalized, error) {
	out := make([]Normalized, 0, len(outputs))
	seen := make(map[string]struct{}, len(outputs))
	for _, o := range outputs {
		if !o.Active {
			continue
		}
		if err := validate(o); err != nil {
			return nil, err
		}
		if _, dup := seen[o.Name]; dup {
			return nil, &InvalidGeometryError{Output: o.Name, Width: o.Width, Height: o.Height, Reason: "duplicate output name"}
		}
		seen[o.Name] = struct{}{}

		if o.Scale <= 0 {
			o.Scale = 1.0
		}
		ew, eh := transform.EffectiveSize(o.Width, o.Height, o.Transform)
		out = append(out, Normalized{Output: o, EffectiveWidth: ew, EffectiveHeight: eh})
	}
	if len(out) == 0 {
		return nil, &EmptyOutputSetError{Total: len(outputs)}
	}
	return out, nil
}

func validate(o Output) error {
	if strings.TrimSpace(o.Name) == "" {
		return &InvalidGeometryError{Output: o.Name, Width: o.Width, Height: o.Height, Reason: "output name is required"}
	}
	if o.Width <= 0 || o.Height <= 0 {
		return &InvalidGeometryError{Output: o.Name, Width: o.Width, Height: o.Height, Reason: "width and height must be positive"}
	}
	if !o.Transform.Valid() {
		return &InvalidGeometryError{Output: o.Name, Width: o.Width, Height: o.Height, Reason: fmt.Sprintf("unknown transform %d", int(o.Transform))}
	}
	return nil
}

// ApplyOverrides returns a copy of outputs with transforms replaced for the
// named outputs. Naming an output that does not exist is an error.
func ApplyOverrides(outputs []Output, overrides map[string]transform.Transform) ([]Output, error) {
	out := make([]Output, len(outputs))
	copy(out, outputs)
	if len(overrides) == 0 {
		return out, nil
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		found := false
		for i := range out {
			if out[i].Name == name {
				out[i].Transform = overrides[name]
				found = true
			}
		}
		if !found {
			return nil, &InvalidGeometryError{Output: name, Reason: "orientation override names an unknown output"}
		}
	}
	return out, nil
}

// ParseOverride parses an orientation override of the form NAME:TRANSFORM.
func ParseOverride(spec string) (string, transform.Transform, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return "", transform.Normal, fmt.Errorf("invalid orientation %q (want OUTPUT:TRANSFORM)", spec)
	}
	t, err := transform.Parse(spec[idx+1:])
	if err != nil {
		return "", transform.Normal, err
	}
	return spec[:idx], t, nil
}

// Listing is a display row for an output, active or not.
type Listing struct {
	Output
	EffectiveWidth  int `json:"effective_width"`
	EffectiveHeight int `json:"effective_height"`
}

// Describe returns listing rows for every output in input order, including
// inactive ones.
func Describe(outputs []Output) []Listing {
	rows := make([]Listing, 0, len(outputs))
	for _, o := range outputs {
		if o.Scale <= 0 {
			o.Scale = 1.0
		}
		ew, eh := transform.EffectiveSize(o.Width, o.Height, o.Transform)
		rows = append(rows, Listing{Output: o, EffectiveWidth: ew, EffectiveHeight: eh})
	}
	return rows
}
