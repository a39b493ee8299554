package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawHistoryConfig struct {
	Enabled   *bool   `yaml:"enabled"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors Config with optional fields so that included files and
// the main file can be layered before defaults are applied.
type RawConfig struct {
	Include    IncludeList       `yaml:"include"`
	Mode       *string           `yaml:"mode"`
	Background *string           `yaml:"background"`
	Filter     *string           `yaml:"filter"`
	StateDir   *string           `yaml:"state_dir"`
	Workers    *int              `yaml:"workers"`
	LogLevel   *string           `yaml:"log_level"`
	Display    *string           `yaml:"display"`
	History    *RawHistoryConfig `yaml:"history"`
}

// merge layers overlay on top of c. Set fields in overlay win.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil
	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	if overlay.Filter != nil {
		out.Filter = overlay.Filter
	}
	if overlay.StateDir != nil {
		out.StateDir = overlay.StateDir
	}
	if overlay.Workers != nil {
		out.Workers = overlay.Workers
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.History != nil {
		h := RawHistoryConfig{}
		if out.History != nil {
			h = *out.History
		}
		if overlay.History.Enabled != nil {
			h.Enabled = overlay.History.Enabled
		}
		if overlay.History.File != nil {
			h.File = overlay.History.File
		}
		if overlay.History.MaxSizeMB != nil {
			h.MaxSizeMB = overlay.History.MaxSizeMB
		}
		if overlay.History.MaxFiles != nil {
			h.MaxFiles = overlay.History.MaxFiles
		}
		out.History = &h
	}
	return out
}
