package store

import (
	"os"
	"sort"

	"github.com/1broseidon/spanwall/internal/layout"
)

// Action is the restore decision for one output.
type Action string

const (
	ActionReuse     Action = "reuse"
	ActionRecompute Action = "recompute"
)

// Task is the planned restore work for one current output.
type Task struct {
	Output string
	Action Action
	Reason string
	// Entry is the stored entry, when one exists.
	Entry *Entry
}

// RestorePlan pairs the current outputs with the stored record.
type RestorePlan struct {
	Tasks []Task
	// Stale holds stored entries whose output is no longer present.
	Stale []Entry
}

// Plan decides, per placement in canvas, whether the stored raster can be
// reused. digest is the current content digest of the stored source image;
// pass the record's own digest when the source can no longer be read.
func Plan(rec *Record, canvas layout.Canvas, digest string) *RestorePlan {
	plan := &RestorePlan{}
	seen := make(map[string]bool, len(canvas.Placements))

	var spec SpecRecord
	if rec != nil {
		spec = rec.Spec
		spec.Digest = digest
	}

	for _, p := range canvas.Placements {
		name := p.Output.Name
		seen[name] = true

		task := Task{Output: name, Action: ActionRecompute}
		var entry Entry
		var ok bool
		if rec != nil {
			entry, ok = rec.Entry(name)
		}
		switch {
		case !ok:
			task.Reason = "no stored raster"
		default:
			task.Entry = &entry
			task.Reason = changeReason(rec, entry, canvas, p, digest)
			if task.Reason == "" {
				if _, err := os.Stat(entry.Path); err != nil {
					task.Reason = "raster missing"
				} else if fp := Fingerprint(spec, canvas, p); fp == "" || fp != entry.Fingerprint {
					task.Reason = "fingerprint changed"
				} else {
					task.Action = ActionReuse
				}
			}
		}
		plan.Tasks = append(plan.Tasks, task)
	}

	if rec != nil {
		for _, e := range rec.Outputs {
			if !seen[e.Output.Name] {
				plan.Stale = append(plan.Stale, e)
			}
		}
	}
	return plan
}

// changeReason names the first input that differs from the stored entry,
// or returns "" when none does.
func changeReason(rec *Record, e Entry, canvas layout.Canvas, p layout.Placement, digest string) string {
	stored, current := e.Output, p.Output.Output
	switch {
	case stored.Width != current.Width || stored.Height != current.Height:
		return "resolution changed"
	case stored.Transform != current.Transform:
		return "transform changed"
	case stored.Scale != current.Scale:
		return "scale changed"
	case stored.X != current.X || stored.Y != current.Y:
		if !rec.Spec.Mode.PerOutput() {
			return "position changed"
		}
	case digest != rec.Spec.Digest:
		return "source image changed"
	}
	if !rec.Spec.Mode.PerOutput() && (rec.Canvas.Width != canvas.Width || rec.Canvas.Height != canvas.Height || e.Rect != p.Rect) {
		return "canvas changed"
	}
	if digest != rec.Spec.Digest {
		return "source image changed"
	}
	return ""
}

// Recompute returns the set of outputs that must be rendered again.
func (p *RestorePlan) Recompute() map[string]bool {
	out := make(map[string]bool)
	for _, t := range p.Tasks {
		if t.Action == ActionRecompute {
			out[t.Output] = true
		}
	}
	return out
}

// Reused returns the stored entries that are kept as-is.
func (p *RestorePlan) Reused() []Entry {
	var out []Entry
	for _, t := range p.Tasks {
		if t.Action == ActionReuse && t.Entry != nil {
			out = append(out, *t.Entry)
		}
	}
	return out
}

// Task returns the planned task for an output.
func (p *RestorePlan) Task(name string) (Task, bool) {
	for _, t := range p.Tasks {
		if t.Output == name {
			return t, true
		}
	}
	return Task{}, false
}

// StaleError reports stale entries as a *StaleConfigError, or nil.
func (p *RestorePlan) StaleError() error {
	if len(p.Stale) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.Stale))
	for _, e := range p.Stale {
		names = append(names, e.Output.Name)
	}
	sort.Strings(names)
	return &StaleConfigError{Outputs: names}
}
