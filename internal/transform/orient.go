package transform

import (
	"image"
	"image/draw"
)

// Orient remaps a raster authored in effective orientation into the native
// framebuffer layout for t. Displaying the result through a compositor that
// applies t shows img upright. The result always has origin (0,0).
func Orient(img image.Image, t Transform) *image.RGBA {
	src := toRGBA(img)
	ew, eh := src.Rect.Dx(), src.Rect.Dy()
	nw, nh := NativeSize(ew, eh, t)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	if t == Normal {
		copy(dst.Pix, src.Pix)
		return dst
	}

	for y := 0; y < nh; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < nw; x++ {
			ex, ey := nativeToEffective(x, y, nw, nh, t)
			si := ey*src.Stride + ex*4
			copy(row[x*4:x*4+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// Unorient is the inverse of Orient: it converts a native framebuffer raster
// back into the orientation seen on screen.
func Unorient(img image.Image, t Transform) *image.RGBA {
	src := toRGBA(img)
	nw, nh := src.Rect.Dx(), src.Rect.Dy()
	ew, eh := EffectiveSize(nw, nh, t)
	dst := image.NewRGBA(image.Rect(0, 0, ew, eh))
	if t == Normal {
		copy(dst.Pix, src.Pix)
		return dst
	}

	for y := 0; y < nh; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < nw; x++ {
			ex, ey := nativeToEffective(x, y, nw, nh, t)
			di := ey*dst.Stride + ex*4
			copy(dst.Pix[di:di+4], row[x*4:x*4+4])
		}
	}
	return dst
}

// nativeToEffective maps a native pixel to the effective pixel the
// compositor shows in its place. The compositor mirrors first, then rotates
// clockwise, so the native buffer is the effective image rotated back and
// then mirrored.
func nativeToEffective(x, y, nw, nh int, t Transform) (int, int) {
	if t.IsFlipped() {
		x = nw - 1 - x
	}
	switch t.Rotation() {
	case 1:
		return nh - 1 - y, x
	case 2:
		return nw - 1 - x, nh - 1 - y
	case 3:
		return y, nw - 1 - x
	default:
		return x, y
	}
}

// toRGBA returns img as an *image.RGBA anchored at (0,0) with a tight stride.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
