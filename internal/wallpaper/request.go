package wallpaper

import (
	"fmt"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/transform"
)

// ParseOrientations parses NAME:TRANSFORM overrides. Naming an output twice
// is an error.
func ParseOrientations(specs []string) (map[string]transform.Transform, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]transform.Transform, len(specs))
	for _, spec := range specs {
		name, t, err := geometry.ParseOverride(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("orientation for %s given more than once", name)
		}
		out[name] = t
	}
	return out, nil
}
