package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/sway"
	"github.com/1broseidon/spanwall/internal/transform"
	"github.com/1broseidon/spanwall/internal/x11"
)

// errNoSession is returned when no output source was given and neither a
// sway nor an X11 session can be found.
var errNoSession = errors.New("no output source: pass --outputs, --sway-json, --sway-config or --x11, or run inside a sway or X11 session")

// sourceFlags selects where the output list comes from.
type sourceFlags struct {
	outputsFile string
	swayJSON    string
	swayConfig  string
	x11         bool
	display     string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.outputsFile, "outputs", "", "Read outputs from a JSON or YAML `file` (- for stdin)")
	fs.StringVar(&s.swayJSON, "sway-json", "", "Read swaymsg -t get_outputs JSON from `file` (- for stdin)")
	fs.StringVar(&s.swayConfig, "sway-config", "", "Read output directives from a sway config `file`")
	fs.BoolVar(&s.x11, "x11", false, "Query the X server through RandR")
	fs.StringVar(&s.display, "display", "", "X11 display for --x11 (default: $DISPLAY or config)")
}

func (s *sourceFlags) explicit() bool {
	return s.outputsFile != "" || s.swayJSON != "" || s.swayConfig != "" || s.x11
}

func (s *sourceFlags) validate() error {
	n := 0
	for _, set := range []bool{s.outputsFile != "", s.swayJSON != "", s.swayConfig != "", s.x11} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("--outputs, --sway-json, --sway-config and --x11 are mutually exclusive")
	}
	return nil
}

// resolve returns the output list. Without an explicit source it asks sway
// when SWAYSOCK is set and the X server when DISPLAY is set.
func (s *sourceFlags) resolve(ctx context.Context, stdin io.Reader, defaultDisplay string) ([]geometry.Output, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	display := s.display
	if display == "" {
		display = defaultDisplay
	}

	switch {
	case s.outputsFile != "":
		return readSource(s.outputsFile, stdin, loadOutputs)
	case s.swayJSON != "":
		return readSource(s.swayJSON, stdin, sway.ParseOutputs)
	case s.swayConfig != "":
		return sway.LoadConfig(s.swayConfig)
	case s.x11:
		return x11.Outputs(display)
	case os.Getenv("SWAYSOCK") != "":
		return sway.Query(ctx)
	case os.Getenv("DISPLAY") != "" || display != "":
		return x11.Outputs(display)
	}
	return nil, errNoSession
}

func readSource(path string, stdin io.Reader, parse func(io.Reader) ([]geometry.Output, error)) ([]geometry.Output, error) {
	if path == "-" {
		return parse(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	outputs, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return outputs, nil
}

// outputEntry is one output in an outputs file. Active defaults to true.
type outputEntry struct {
	Name      string              `yaml:"name"`
	Width     int                 `yaml:"width"`
	Height    int                 `yaml:"height"`
	X         int                 `yaml:"x"`
	Y         int                 `yaml:"y"`
	Scale     float64             `yaml:"scale"`
	Transform transform.Transform `yaml:"transform"`
	Active    *bool               `yaml:"active"`
}

// outputsFile is the mapping form of an outputs file.
type outputsFile struct {
	Outputs []outputEntry `yaml:"outputs"`
}

// loadOutputs decodes a JSON or YAML output list, either bare or under an
// "outputs" key. JSON is read through the YAML decoder.
func loadOutputs(r io.Reader) ([]geometry.Output, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("outputs file is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse outputs: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("outputs file is empty")
	}

	doc := root.Content[0]
	var entries []outputEntry
	switch doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&entries)
	case yaml.MappingNode:
		var file outputsFile
		err = doc.Decode(&file)
		entries = file.Outputs
	default:
		return nil, fmt.Errorf("outputs must be a list or a mapping with an outputs key")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse outputs: %w", err)
	}

	outputs := make([]geometry.Output, 0, len(entries))
	for _, e := range entries {
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		outputs = append(outputs, geometry.Output{
			Name:      e.Name,
			Width:     e.Width,
			Height:    e.Height,
			X:         e.X,
			Y:         e.Y,
			Scale:     e.Scale,
			Transform: e.Transform,
			Active:    active,
		})
	}
	return outputs, nil
}
