package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/bamiaux/rez"
	"golang.org/x/image/draw"
)

// scaler resamples src[sr] into dst[dr], clipping to dst's bounds.
type scaler interface {
	Scale(dst draw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle)
}

type interpolatorScaler struct {
	interp draw.Interpolator
}

func (s interpolatorScaler) Scale(dst draw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	s.interp.Scale(dst, dr, src, sr, draw.Over, nil)
}

// rezScaler resamples with a separable rez kernel. rez needs the full
// destination size, so the result is scaled off-screen and then composited.
type rezScaler struct {
	filter   rez.Filter
	fallback scaler
}

func (s rezScaler) Scale(dst draw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle) {
	in := image.NewRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	draw.Draw(in, in.Rect, src, sr.Min, draw.Src)
	out := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	if err := rez.Convert(out, in, s.filter); err != nil {
		// rez rejects some tiny or extreme ratios; keep the output usable.
		s.fallback.Scale(dst, dr, src, sr)
		return
	}
	draw.Draw(dst, dr, out, image.Point{}, draw.Over)
}

func scalerFor(f Filter) scaler {
	switch f {
	case FilterNearest:
		return interpolatorScaler{draw.NearestNeighbor}
	case FilterApproxBiLinear:
		return interpolatorScaler{draw.ApproxBiLinear}
	case FilterBiLinear:
		return interpolatorScaler{draw.BiLinear}
	case FilterLanczos:
		return rezScaler{filter: rez.NewLanczosFilter(3), fallback: interpolatorScaler{draw.CatmullRom}}
	default:
		return interpolatorScaler{draw.CatmullRom}
	}
}

// place draws src into dr on dst. Same-size placements are copied directly so
// an unscaled image is reproduced exactly.
func place(dst draw.Image, dr image.Rectangle, src image.Image, s scaler) {
	sr := src.Bounds()
	if dr.Empty() || sr.Empty() {
		return
	}
	if dr.Dx() == sr.Dx() && dr.Dy() == sr.Dy() {
		draw.Draw(dst, dr, src, sr.Min, draw.Over)
		return
	}
	s.Scale(dst, dr, src, sr)
}

// filled returns a w×h RGBA canvas painted with bg.
func filled(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return img
}

// scaledSize rounds w×h multiplied by s to the nearest pixel, never below 1.
func scaledSize(w, h int, s float64) (int, int) {
	return max(1, int(math.Round(float64(w)*s))), max(1, int(math.Round(float64(h)*s)))
}

// centerStart returns where a span of size inner starts so that it is
// centred in outer. Odd leftovers put the smaller half on the leading edge.
func centerStart(outer, inner int) int {
	if inner >= outer {
		return -((inner - outer) / 2)
	}
	return (outer - inner) / 2
}

// fitFactor is the aspect-preserving scale that fits sw×sh inside tw×th.
func fitFactor(sw, sh, tw, th int) float64 {
	return math.Min(float64(tw)/float64(sw), float64(th)/float64(sh))
}

// fillFactor is the aspect-preserving scale that makes sw×sh cover tw×th.
func fillFactor(sw, sh, tw, th int) float64 {
	return math.Max(float64(tw)/float64(sw), float64(th)/float64(sh))
}

// renderPerOutput renders src into a tw×th effective-space raster according
// to mode.
func renderPerOutput(mode Mode, tw, th int, src image.Image, bg color.RGBA, s scaler) *image.RGBA {
	dst := filled(tw, th, bg)
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()

	var pw, ph int
	switch mode {
	case ModeFill:
		pw, ph = scaledSize(sw, sh, fillFactor(sw, sh, tw, th))
	case ModeFit:
		pw, ph = scaledSize(sw, sh, fitFactor(sw, sh, tw, th))
	case ModeCenter:
		pw, ph = sw, sh
	case ModeTile:
		for y := 0; y < th; y += sh {
			for x := 0; x < tw; x += sw {
				draw.Draw(dst, image.Rect(x, y, x+sw, y+sh), src, sb.Min, draw.Over)
			}
		}
		return dst
	}

	x0, y0 := centerStart(tw, pw), centerStart(th, ph)
	place(dst, image.Rect(x0, y0, x0+pw, y0+ph), src, s)
	return dst
}

// stretchPlacement returns where the source lands on a cw×ch canvas. Without
// a user scale the image is stretched to the canvas; with one its native
// size is multiplied and it is centred. The offset is in source pixels and
// is applied after centring.
func stretchPlacement(cw, ch, sw, sh int, offset Offset, scale float64) image.Rectangle {
	var pw, ph int
	var sx, sy float64
	if scale > 0 {
		pw, ph = scaledSize(sw, sh, scale)
		sx, sy = scale, scale
	} else {
		pw, ph = cw, ch
		sx, sy = float64(cw)/float64(sw), float64(ch)/float64(sh)
	}
	x := centerStart(cw, pw) + int(math.Round(float64(offset.X)*sx))
	y := centerStart(ch, ph) + int(math.Round(float64(offset.Y)*sy))
	return image.Rect(x, y, x+pw, y+ph)
}
