// Package sway reads output geometry from a running sway instance or from
// a sway config file.
package sway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/transform"
)

// ErrSwaymsgNotAvailable is returned when swaymsg is not on PATH.
var ErrSwaymsgNotAvailable = errors.New("swaymsg is not installed or not in PATH")

type rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type mode struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// output mirrors the fields of one swaymsg get_outputs element that matter
// for geometry.
type output struct {
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	Rect        rect    `json:"rect"`
	Scale       float64 `json:"scale"`
	Transform   string  `json:"transform"`
	CurrentMode *mode   `json:"current_mode"`
}

// Query runs "swaymsg -t get_outputs -r" and parses the result.
func Query(ctx context.Context) ([]geometry.Output, error) {
	if _, err := exec.LookPath("swaymsg"); err != nil {
		return nil, ErrSwaymsgNotAvailable
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "swaymsg", "-t", "get_outputs", "-r")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("swaymsg get_outputs failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("swaymsg get_outputs failed: %w", err)
	}
	return ParseOutputs(bytes.NewReader(out))
}

// ParseOutputs decodes swaymsg get_outputs JSON. Sway reports rect in
// logical units, so the native mode is taken from current_mode when sway
// provides it and derived from rect, scale and transform otherwise.
// Positions are converted with nativePositions. Inactive outputs are
// returned with Active false.
func ParseOutputs(r io.Reader) ([]geometry.Output, error) {
	var raw []output
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse get_outputs JSON: %w", err)
	}

	outputs := make([]geometry.Output, 0, len(raw))
	for _, o := range raw {
		t, err := transform.Parse(o.Transform)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o.Name, err)
		}
		scale := o.Scale
		if scale <= 0 {
			scale = 1.0
		}

		var w, h int
		if o.CurrentMode != nil && o.CurrentMode.Width > 0 && o.CurrentMode.Height > 0 {
			w, h = o.CurrentMode.Width, o.CurrentMode.Height
		} else {
			ew := int(math.Round(float64(o.Rect.Width) * scale))
			eh := int(math.Round(float64(o.Rect.Height) * scale))
			w, h = transform.NativeSize(ew, eh, t)
		}

		outputs = append(outputs, geometry.Output{
			Name:      o.Name,
			Width:     w,
			Height:    h,
			X:         o.Rect.X,
			Y:         o.Rect.Y,
			Scale:     scale,
			Transform: t,
			Active:    o.Active,
		})
	}
	nativePositions(outputs)
	return outputs, nil
}

// nativePositions moves sway's logical positions into the pixel space of
// the native modes by multiplying them with the largest active scale. With
// one scale on every output the outputs stay edge to edge; with mixed
// scales the arrangement is kept but lower-scale outputs cover less of it.
func nativePositions(outputs []geometry.Output) {
	factor := 0.0
	for _, o := range outputs {
		if o.Active && o.Scale > factor {
			factor = o.Scale
		}
	}
	if factor <= 0 || factor == 1 {
		return
	}
	for i := range outputs {
		outputs[i].X = int(math.Round(float64(outputs[i].X) * factor))
		outputs[i].Y = int(math.Round(float64(outputs[i].Y) * factor))
	}
}
