package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	mode
//	background
//	filter
//	state_dir
//	workers
//	log_level
//	display
//	history.enabled
//	history.file
//	history.max_size_mb
//	history.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "history" {
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported path %q", path)
		}
		switch parts[1] {
		case "enabled":
			return cfg.History.Enabled, nil
		case "file":
			return cfg.History.File, nil
		case "max_size_mb":
			return cfg.History.MaxSizeMB, nil
		case "max_files":
			return cfg.History.MaxFiles, nil
		}
		return nil, fmt.Errorf("unsupported path %q", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unsupported path %q", path)
	}
	switch parts[0] {
	case "mode":
		return cfg.Mode, nil
	case "background":
		return cfg.Background, nil
	case "filter":
		return cfg.Filter, nil
	case "state_dir":
		return cfg.StateDir, nil
	case "workers":
		return cfg.Workers, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "display":
		return cfg.Display, nil
	}
	return nil, fmt.Errorf("unsupported path %q", path)
}
