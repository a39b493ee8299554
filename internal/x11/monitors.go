package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/transform"
)

// RandR rotation bits as carried in CrtcInfo.Rotation.
const (
	rotate0   = 1 << 0
	rotate90  = 1 << 1
	rotate180 = 1 << 2
	rotate270 = 1 << 3
	reflectX  = 1 << 4
	reflectY  = 1 << 5
)

// GetOutputs lists every RandR output. Outputs without a CRTC are returned
// inactive with zero geometry.
func (c *Connection) GetOutputs() ([]geometry.Output, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []geometry.Output
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		name := string(info.Name)
		if info.Crtc == 0 {
			outputs = append(outputs, geometry.Output{Name: name, Scale: 1})
			continue
		}

		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get CRTC for %s: %w", name, err)
		}
		outputs = append(outputs, outputFromCrtc(name, int(crtc.X), int(crtc.Y), int(crtc.Width), int(crtc.Height), crtc.Rotation))
	}
	return outputs, nil
}

// outputFromCrtc converts CRTC geometry, which is already rotated into
// screen space, into a native-mode output.
func outputFromCrtc(name string, x, y, w, h int, rotation uint16) geometry.Output {
	t := transformFor(rotation)
	nw, nh := transform.NativeSize(w, h, t)
	return geometry.Output{
		Name:      name,
		Width:     nw,
		Height:    nh,
		X:         x,
		Y:         y,
		Scale:     1,
		Transform: t,
		Active:    w > 0 && h > 0,
	}
}

// transformFor maps RandR rotation bits to a Transform. RandR rotates
// counter-clockwise (rotate90 is xrandr's "left") while Transform turns
// clockwise, and the X server reflects after rotating.
func transformFor(rotation uint16) transform.Transform {
	rot := 0
	switch {
	case rotation&rotate90 != 0:
		rot = 270
	case rotation&rotate180 != 0:
		rot = 180
	case rotation&rotate270 != 0:
		rot = 90
	}

	flip := false
	// A horizontal mirror applied after a rotation by r equals mirroring
	// first and rotating by -r.
	if rotation&reflectX != 0 {
		flip = !flip
		rot = (360 - rot) % 360
	}
	// A vertical mirror is a horizontal mirror followed by a half turn.
	if rotation&reflectY != 0 {
		flip = !flip
		rot = (360 - rot + 180) % 360
	}
	return compose(flip, rot)
}

func compose(flip bool, rot int) transform.Transform {
	t := transform.Transform(rot / 90)
	if flip {
		t += transform.Flipped
	}
	return t
}
