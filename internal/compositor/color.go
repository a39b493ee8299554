package compositor

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". An empty string is
// DefaultBackground.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultBackground, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	// image.RGBA is alpha-premultiplied.
	if alpha != 255 {
		r = uint8(uint16(r) * uint16(alpha) / 255)
		g = uint8(uint16(g) * uint16(alpha) / 255)
		b = uint8(uint16(b) * uint16(alpha) / 255)
	}
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// FormatColor is the inverse of ParseColor for opaque colours; translucent
// colours gain an alpha suffix.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
	}
	if c.A == 0 {
		return "#00000000"
	}
	// Undo premultiplication.
	un := func(v uint8) float64 { return min(1, float64(v)/float64(c.A)) }
	return fmt.Sprintf("%s%02x", colorful.Color{R: un(c.R), G: un(c.G), B: un(c.B)}.Hex(), c.A)
}
