package sway

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/transform"
)

// Default mode for outputs whose config never names a resolution.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// LoadConfig parses the output directives of the sway config at path.
func LoadConfig(path string) ([]geometry.Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sway config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig reads "output NAME ..." directives. Repeated directives for
// the same output accumulate, as they do in sway. Recognized subcommands
// are res/resolution/mode WxH[@rate], pos/position X Y, scale S,
// transform T, enable and disable; everything else (bg, dpms, adaptive_sync)
// is ignored. Wildcard outputs are skipped. Positions are logical, as in
// get_outputs, and are converted the same way.
func ParseConfig(r io.Reader) ([]geometry.Output, error) {
	var order []string
	byName := make(map[string]*geometry.Output)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != "output" || len(fields) < 3 {
			continue
		}
		name := strings.Trim(fields[1], `"'`)
		if name == "*" || name == "-" {
			continue
		}

		o, ok := byName[name]
		if !ok {
			o = &geometry.Output{Name: name, Width: DefaultWidth, Height: DefaultHeight, Scale: 1.0, Active: true}
			byName[name] = o
			order = append(order, name)
		}
		if err := applyDirective(o, fields[2:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sway config: %w", err)
	}

	outputs := make([]geometry.Output, 0, len(order))
	for _, name := range order {
		outputs = append(outputs, *byName[name])
	}
	nativePositions(outputs)
	return outputs, nil
}

func applyDirective(o *geometry.Output, args []string) error {
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "res", "resolution", "mode":
			i = skipFlags(args, i+1)
			if i >= len(args) {
				return fmt.Errorf("output %s: %s needs WIDTHxHEIGHT", o.Name, args[len(args)-1])
			}
			w, h, err := parseMode(args[i])
			if err != nil {
				return fmt.Errorf("output %s: %w", o.Name, err)
			}
			o.Width, o.Height = w, h
		case "pos", "position":
			if i+2 >= len(args) {
				return fmt.Errorf("output %s: position needs X Y", o.Name)
			}
			x, errX := strconv.Atoi(args[i+1])
			y, errY := strconv.Atoi(args[i+2])
			if errX != nil || errY != nil {
				return fmt.Errorf("output %s: invalid position %q %q", o.Name, args[i+1], args[i+2])
			}
			o.X, o.Y = x, y
			i += 2
		case "scale":
			if i+1 >= len(args) {
				return fmt.Errorf("output %s: scale needs a value", o.Name)
			}
			s, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil || s <= 0 {
				return fmt.Errorf("output %s: invalid scale %q", o.Name, args[i+1])
			}
			o.Scale = s
			i++
		case "transform":
			if i+1 >= len(args) {
				return fmt.Errorf("output %s: transform needs a value", o.Name)
			}
			t, err := transform.Parse(args[i+1])
			if err != nil {
				return fmt.Errorf("output %s: %w", o.Name, err)
			}
			o.Transform = t
			i++
			// Relative rotations ("90 clockwise") are not a fixed layout.
			if i+1 < len(args) && (args[i+1] == "clockwise" || args[i+1] == "anticlockwise") {
				return fmt.Errorf("output %s: relative transform %q is not supported", o.Name, args[i+1])
			}
		case "disable":
			o.Active = false
		case "enable":
			o.Active = true
		}
	}
	return nil
}

// skipFlags advances past "--custom" style flags that may precede a mode.
func skipFlags(args []string, i int) int {
	for i < len(args) && strings.HasPrefix(args[i], "--") {
		i++
	}
	return i
}

// parseMode parses "1920x1080" or "1920x1080@60Hz".
func parseMode(s string) (int, int, error) {
	s, _, _ = strings.Cut(s, "@")
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid mode %q (want WIDTHxHEIGHT)", s)
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid mode %q (want WIDTHxHEIGHT)", s)
	}
	return w, h, nil
}
