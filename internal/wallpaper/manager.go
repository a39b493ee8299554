// Package wallpaper ties output geometry, the compositor and the store
// together into the apply, restore, list and cleanup operations.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/history"
	"github.com/1broseidon/spanwall/internal/layout"
	"github.com/1broseidon/spanwall/internal/store"
	"github.com/1broseidon/spanwall/internal/transform"
)

// ErrNoRecord is returned by Restore before anything has been applied.
var ErrNoRecord = errors.New("no stored background; run apply first")

// Options configures a Manager.
type Options struct {
	Store      *store.Store
	Compositor *compositor.Compositor
	// History receives one entry per completed operation. Nil disables it.
	History *history.Logger
	Logger  *slog.Logger
	// Mode, Background and Filter are used when a request leaves them
	// unset. An empty Mode means stretch and a nil Background opaque black.
	Mode       compositor.Mode
	Background *color.RGBA
	Filter     compositor.Filter
}

// Manager runs the background operations against one store.
type Manager struct {
	store      *store.Store
	compositor *compositor.Compositor
	history    *history.Logger
	logger     *slog.Logger
	mode       compositor.Mode
	background color.RGBA
	filter     compositor.Filter
}

// New creates a Manager.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	comp := opts.Compositor
	if comp == nil {
		comp = compositor.New(compositor.Options{Logger: logger})
	}
	mode := opts.Mode
	if mode == "" {
		mode = compositor.ModeStretch
	}
	bg := compositor.DefaultBackground
	if opts.Background != nil {
		bg = *opts.Background
	}
	return &Manager{
		store:      opts.Store,
		compositor: comp,
		history:    opts.History,
		logger:     logger,
		mode:       mode,
		background: bg,
		filter:     opts.Filter,
	}
}

// ApplyRequest describes a new background.
type ApplyRequest struct {
	Image  string
	Mode   compositor.Mode
	Offset compositor.Offset
	Scale  float64
	// Background overrides the manager default when non-nil.
	Background *color.RGBA
	Filter     compositor.Filter
	// Overrides replaces the transform of the named outputs.
	Overrides map[string]transform.Transform
	Outputs   []geometry.Output
}

// RestoreRequest re-establishes the stored background.
type RestoreRequest struct {
	// Outputs is the live output list. Nil restores against the stored
	// geometry snapshot.
	Outputs   []geometry.Output
	Overrides map[string]transform.Transform
	// DropStale removes record entries for outputs that are gone instead of
	// retaining them.
	DropStale bool
}

// Result is the outcome of Apply or Restore.
type Result struct {
	// Renditions holds the rasters rendered by this call. On restore,
	// reused outputs are not included.
	Renditions []compositor.Rendition
	Record     *store.Record
	Canvas     layout.Canvas
	// Outputs is the output list after overrides were applied.
	Outputs []geometry.Output
	// Overridden names the outputs whose transform was overridden.
	Overridden []string
	// Plan is set by Restore.
	Plan *store.RestorePlan
}

// Entries returns the record entries for the outputs in the current canvas.
func (r *Result) Entries() []store.Entry {
	if r == nil || r.Record == nil {
		return nil
	}
	out := make([]store.Entry, 0, len(r.Canvas.Placements))
	for _, p := range r.Canvas.Placements {
		if e, ok := r.Record.Entry(p.Output.Name); ok {
			out = append(out, e)
		}
	}
	return out
}

// Apply renders req.Image for the given outputs and persists the result.
// When some outputs fail to render the successes are still persisted and
// the *compositor.PartialRenderError is returned alongside the result.
func (m *Manager) Apply(ctx context.Context, req ApplyRequest) (*Result, error) {
	start := time.Now()
	outputs, err := geometry.ApplyOverrides(req.Outputs, req.Overrides)
	if err != nil {
		return nil, err
	}
	canvas, err := compose(outputs)
	if err != nil {
		return nil, err
	}

	source, err := filepath.Abs(req.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image path: %w", err)
	}
	src, format, err := compositor.Load(source)
	if err != nil {
		return nil, err
	}
	digest, err := store.Digest(source)
	if err != nil {
		return nil, err
	}

	spec := compositor.Spec{
		Mode:       req.Mode,
		Source:     source,
		Offset:     req.Offset,
		Scale:      req.Scale,
		Background: m.background,
		Filter:     req.Filter,
	}
	if spec.Mode == "" {
		spec.Mode = m.mode
	}
	if req.Background != nil {
		spec.Background = *req.Background
	}
	if spec.Filter == "" {
		spec.Filter = m.filter
	}

	m.logger.Debug("applying background",
		"image", source,
		"format", format,
		"size", fmt.Sprintf("%dx%d", src.Bounds().Dx(), src.Bounds().Dy()),
		"mode", string(spec.Mode),
		"canvas", canvas.String())

	renditions, renderErr := m.compositor.Render(ctx, canvas, spec, src)
	var partial *compositor.PartialRenderError
	if renderErr != nil && !errors.As(renderErr, &partial) {
		return nil, renderErr
	}

	rec, err := m.store.Save(canvas, spec, digest, renditions)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Renditions: renditions,
		Record:     rec,
		Canvas:     canvas,
		Outputs:    outputs,
		Overridden: overridden(req.Overrides),
	}
	m.history.Log(history.ActionApply, map[string]any{
		"image":    source,
		"mode":     string(rec.Mode),
		"outputs":  renditionNames(renditions),
		"failed":   failureCount(partial),
		"canvas":   fmt.Sprintf("%dx%d", canvas.Width, canvas.Height),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})
	m.logger.Info("background applied",
		"mode", string(rec.Mode),
		"outputs", len(renditions),
		"failed", failureCount(partial),
		"dir", m.store.Dir())
	return res, renderErr
}

// Restore reuses stored rasters whose output is unchanged and recomputes
// the rest with the stored spec. Stale entries are reported through a
// *store.StaleConfigError joined with any render error.
func (m *Manager) Restore(ctx context.Context, req RestoreRequest) (*Result, error) {
	start := time.Now()
	rec, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoRecord
	}

	live := req.Outputs
	if live == nil {
		live = rec.Geometry()
	}
	outputs, err := geometry.ApplyOverrides(live, req.Overrides)
	if err != nil {
		return nil, err
	}
	canvas, err := compose(outputs)
	if err != nil {
		return nil, err
	}

	spec, err := rec.Spec.Spec()
	if err != nil {
		return nil, &store.PersistenceIOError{Op: "parse", Path: m.store.RecordPath(), Err: err}
	}

	digest, digestErr := store.Digest(spec.Source)
	if digestErr != nil {
		m.logger.Warn("source image unreadable; only unchanged outputs can be restored",
			"image", spec.Source, "error", digestErr)
		digest = rec.Spec.Digest
	}

	plan := store.Plan(rec, canvas, digest)
	for _, t := range plan.Tasks {
		m.logger.Debug("restore plan", "output", t.Output, "action", string(t.Action), "reason", t.Reason)
	}

	var renditions []compositor.Rendition
	var renderErr error
	if recompute := plan.Recompute(); len(recompute) > 0 {
		var src image.Image
		if digestErr != nil {
			return nil, &compositor.UnsupportedFormatError{Path: spec.Source, Err: digestErr}
		}
		src, _, err = compositor.Load(spec.Source)
		if err != nil {
			return nil, err
		}
		renditions, renderErr = m.compositor.RenderOnly(ctx, canvas, spec, src, recompute)
		var partial *compositor.PartialRenderError
		if renderErr != nil && !errors.As(renderErr, &partial) {
			return nil, renderErr
		}
	}

	keep := plan.Reused()
	if !req.DropStale {
		keep = append(keep, plan.Stale...)
	}
	saved, err := m.store.Save(canvas, spec, digest, renditions, keep...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Renditions: renditions,
		Record:     saved,
		Canvas:     canvas,
		Outputs:    outputs,
		Overridden: overridden(req.Overrides),
		Plan:       plan,
	}

	var staleErr error
	if !req.DropStale {
		staleErr = plan.StaleError()
	}
	m.history.Log(history.ActionRestore, map[string]any{
		"reused":     len(plan.Reused()),
		"recomputed": renditionNames(renditions),
		"stale":      len(plan.Stale),
		"dropped":    req.DropStale && len(plan.Stale) > 0,
		"duration":   time.Since(start).Round(time.Millisecond).String(),
	})
	m.logger.Info("background restored",
		"reused", len(plan.Reused()),
		"recomputed", len(renditions),
		"stale", len(plan.Stale))
	return res, errors.Join(renderErr, staleErr)
}

// ListOutputs returns listing rows for every output, inactive included.
func (m *Manager) ListOutputs(outputs []geometry.Output) []geometry.Listing {
	return geometry.Describe(outputs)
}

// StoredOutputs returns the geometry snapshot of the stored record, or nil
// when nothing has been applied.
func (m *Manager) StoredOutputs() ([]geometry.Output, error) {
	rec, err := m.store.Load()
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Geometry(), nil
}

// Cleanup removes rasters not referenced by the stored record.
func (m *Manager) Cleanup() ([]store.Removed, error) {
	rec, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	removed, err := m.store.Cleanup(rec)
	if err != nil {
		return removed, err
	}

	var total int64
	for _, r := range removed {
		total += r.Size
	}
	m.history.Log(history.ActionCleanup, map[string]any{
		"removed": len(removed),
		"bytes":   total,
	})
	m.logger.Info("cleanup complete", "removed", len(removed), "bytes", total)
	return removed, nil
}

func compose(outputs []geometry.Output) (layout.Canvas, error) {
	normalized, err := geometry.Normalize(outputs)
	if err != nil {
		return layout.Canvas{}, err
	}
	return layout.Compose(normalized)
}

func overridden(overrides map[string]transform.Transform) []string {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renditionNames(rs []compositor.Rendition) []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Output)
	}
	return names
}

func failureCount(partial *compositor.PartialRenderError) int {
	if partial == nil {
		return 0
	}
	return len(partial.Failures)
}
