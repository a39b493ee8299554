package mcp

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct {
	Stored bool `json:"stored,omitempty" jsonschema:"When true, list the geometry snapshot saved with the last background instead of querying the live outputs."`
}

// OutputInfo describes one output.
type OutputInfo struct {
	Name            string  `json:"name"`
	Active          bool    `json:"active"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Scale           float64 `json:"scale"`
	Transform       string  `json:"transform"`
	EffectiveWidth  int     `json:"effective_width"`
	EffectiveHeight int     `json:"effective_height"`
}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Outputs []OutputInfo `json:"outputs"`
}

// ApplyBackgroundInput is the input for the apply_background tool.
type ApplyBackgroundInput struct {
	Image        string   `json:"image" jsonschema:"Path to the source image (png, jpeg, gif, bmp, tiff or webp)"`
	Mode         string   `json:"mode,omitempty" jsonschema:"Placement mode: stretch, fill, fit, center or tile (default from config)"`
	OffsetX      int      `json:"offset_x,omitempty" jsonschema:"Horizontal offset in source pixels (stretch mode only)"`
	OffsetY      int      `json:"offset_y,omitempty" jsonschema:"Vertical offset in source pixels (stretch mode only)"`
	Scale        float64  `json:"scale,omitempty" jsonschema:"Source scale factor (stretch mode only). Omit to stretch the image across the whole canvas."`
	Background   string   `json:"background,omitempty" jsonschema:"Fill color as #rrggbb or #rrggbbaa (default from config)"`
	Filter       string   `json:"filter,omitempty" jsonschema:"Resampling filter: nearest, bilinear, catmull-rom or lanczos"`
	Orientations []string `json:"orientations,omitempty" jsonschema:"Per-output transform overrides as NAME:TRANSFORM, e.g. HDMI-A-1:90"`
}

// EntryInfo describes one stored raster.
type EntryInfo struct {
	Output      string `json:"output"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Rect        string `json:"rect"`
}

// CommandInfo is a shell command that displays the result.
type CommandInfo struct {
	Command string `json:"command"`
}

// ApplyBackgroundOutput is the output for the apply_background tool.
type ApplyBackgroundOutput struct {
	Mode     string        `json:"mode"`
	Canvas   string        `json:"canvas"`
	Entries  []EntryInfo   `json:"entries"`
	Failures []string      `json:"failures,omitempty"`
	Commands []CommandInfo `json:"commands"`
}

// RestoreBackgroundsInput is the input for the restore_backgrounds tool.
type RestoreBackgroundsInput struct {
	DropStale bool `json:"drop_stale,omitempty" jsonschema:"Remove stored entries for outputs that are no longer connected"`
	UseStored bool `json:"use_stored,omitempty" jsonschema:"Restore against the stored geometry instead of the live outputs"`
}

// TaskInfo describes the restore decision for one output.
type TaskInfo struct {
	Output string `json:"output"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// RestoreBackgroundsOutput is the output for the restore_backgrounds tool.
type RestoreBackgroundsOutput struct {
	Tasks    []TaskInfo    `json:"tasks"`
	Stale    []string      `json:"stale,omitempty"`
	Dropped  bool          `json:"dropped,omitempty"`
	Failures []string      `json:"failures,omitempty"`
	Entries  []EntryInfo   `json:"entries"`
	Commands []CommandInfo `json:"commands"`
}

// CleanupBackgroundsInput is the input for the cleanup_backgrounds tool.
type CleanupBackgroundsInput struct{}

// CleanupBackgroundsOutput is the output for the cleanup_backgrounds tool.
type CleanupBackgroundsOutput struct {
	Removed []string `json:"removed"`
	Bytes   int64    `json:"bytes"`
	Freed   string   `json:"freed"`
}
