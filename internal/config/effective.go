package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of the defaults and validates the
// result.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Mode != nil {
		cfg.Mode = *raw.Mode
	}
	if raw.Background != nil {
		cfg.Background = *raw.Background
	}
	if raw.Filter != nil {
		cfg.Filter = *raw.Filter
	}
	if raw.StateDir != nil {
		cfg.StateDir = *raw.StateDir
	}
	if raw.Workers != nil {
		cfg.Workers = *raw.Workers
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if h := raw.History; h != nil {
		if h.Enabled != nil {
			cfg.History.Enabled = *h.Enabled
		}
		if h.File != nil {
			cfg.History.File = *h.File
		}
		cfg.History.MaxSizeMB = derefInt(h.MaxSizeMB, cfg.History.MaxSizeMB)
		cfg.History.MaxFiles = derefInt(h.MaxFiles, cfg.History.MaxFiles)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
