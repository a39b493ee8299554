// Package layout places normalized outputs on one virtual canvas whose
// origin is the top-left corner of their bounding box.
package layout

import (
	"fmt"
	"image"

	"github.com/1broseidon/spanwall/internal/geometry"
)

// Rect represents an output's placement within the canvas.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Placement ties a normalized output to its rectangle in canvas space.
type Placement struct {
	Output geometry.Normalized
	Rect   Rect
}

// Canvas is the virtual screen spanning every active output, translated so
// that its origin is (0,0).
type Canvas struct {
	Width      int
	Height     int
	Origin     image.Point // compositor coordinates of the canvas origin
	Placements []Placement
}

// Compose builds the canvas for the given normalized outputs. Overlapping
// and identically positioned outputs are allowed.
func Compose(outputs []geometry.Normalized) (Canvas, error) {
	if len(outputs) == 0 {
		return Canvas{}, &geometry.EmptyOutputSetError{}
	}

	minX, minY := outputs[0].X, outputs[0].Y
	for _, o := range outputs[1:] {
		minX = min(minX, o.X)
		minY = min(minY, o.Y)
	}

	c := Canvas{
		Origin:     image.Pt(minX, minY),
		Placements: make([]Placement, 0, len(outputs)),
	}
	for _, o := range outputs {
		if o.EffectiveWidth <= 0 || o.EffectiveHeight <= 0 {
			return Canvas{}, &geometry.InvalidGeometryError{
				Output: o.Name,
				Width:  o.Width,
				Height: o.Height,
				Reason: "effective size must be positive",
			}
		}
		r := Rect{
			X:      o.X - minX,
			Y:      o.Y - minY,
			Width:  o.EffectiveWidth,
			Height: o.EffectiveHeight,
		}
		c.Width = max(c.Width, r.X+r.Width)
		c.Height = max(c.Height, r.Y+r.Height)
		c.Placements = append(c.Placements, Placement{Output: o, Rect: r})
	}
	return c, nil
}

// OffsetOf returns the output's top-left corner relative to the canvas
// origin.
func (c Canvas) OffsetOf(name string) (image.Point, bool) {
	for _, p := range c.Placements {
		if p.Output.Name == name {
			return image.Pt(p.Rect.X, p.Rect.Y), true
		}
	}
	return image.Point{}, false
}

// Placement returns the placement recorded for name.
func (c Canvas) Placement(name string) (Placement, bool) {
	for _, p := range c.Placements {
		if p.Output.Name == name {
			return p, true
		}
	}
	return Placement{}, false
}

// Bounds returns the canvas rectangle.
func (c Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d@%d,%d (%d outputs)", c.Width, c.Height, c.Origin.X, c.Origin.Y, len(c.Placements))
}

// Overlap describes two outputs whose canvas rectangles intersect.
type Overlap struct {
	A, B   string
	Width  int
	Height int
}

// Overlaps reports every pair of outputs that share canvas area. Mirrored
// outputs show up with the full overlap size.
func (c Canvas) Overlaps() []Overlap {
	var out []Overlap
	for i := 0; i < len(c.Placements); i++ {
		for j := i + 1; j < len(c.Placements); j++ {
			a, b := c.Placements[i].Rect, c.Placements[j].Rect
			isect := intersectionSize(a.X, a.Y, a.X+a.Width, a.Y+a.Height, b.X, b.Y, b.X+b.Width, b.Y+b.Height)
			if isect.w > 0 && isect.h > 0 {
				out = append(out, Overlap{
					A:      c.Placements[i].Output.Name,
					B:      c.Placements[j].Output.Name,
					Width:  isect.w,
					Height: isect.h,
				})
			}
		}
	}
	return out
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
