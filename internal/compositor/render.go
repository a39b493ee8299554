package compositor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/layout"
	"github.com/1broseidon/spanwall/internal/transform"
)

// Rendition is a finished raster for one output. Image is in native
// framebuffer orientation and size, ready for a transform-unaware setter.
type Rendition struct {
	Output    string
	Image     *image.RGBA
	Rect      layout.Rect // placement in canvas (effective) space
	Transform transform.Transform
	Path      string // set once persisted
}

// Options configures a Compositor.
type Options struct {
	// Workers bounds per-output parallelism. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Compositor renders backgrounds for a composed canvas.
type Compositor struct {
	workers int
	logger  *slog.Logger
}

// New creates a Compositor.
func New(opts Options) *Compositor {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compositor{workers: workers, logger: logger}
}

// Render produces one rendition per canvas placement, in placement order.
// When some outputs fail the successful renditions are returned together
// with a *PartialRenderError.
func (c *Compositor) Render(ctx context.Context, canvas layout.Canvas, spec Spec, src image.Image) ([]Rendition, error) {
	return c.RenderOnly(ctx, canvas, spec, src, nil)
}

// RenderOnly is like Render but limited to the named outputs. A nil set
// renders every placement. In stretch mode the whole canvas is still
// resampled so the crops match a full render.
func (c *Compositor) RenderOnly(ctx context.Context, canvas layout.Canvas, spec Spec, src image.Image, only map[string]bool) ([]Rendition, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if src == nil || src.Bounds().Empty() {
		return nil, &UnsupportedFormatError{Path: spec.Source, Err: fmt.Errorf("image has no pixels")}
	}
	mode, _ := ParseMode(string(spec.Mode))
	filter, _ := ParseFilter(string(spec.Filter))
	s := scalerFor(filter)

	var placements []layout.Placement
	for _, p := range canvas.Placements {
		if only == nil || only[p.Output.Name] {
			placements = append(placements, p)
		}
	}
	if len(placements) == 0 {
		return nil, &geometry.EmptyOutputSetError{Total: len(canvas.Placements)}
	}

	start := time.Now()
	var job func(p layout.Placement) (*image.RGBA, error)
	if mode == ModeStretch {
		// Barrier: every crop reads the fully resampled canvas.
		full := c.renderCanvas(canvas, spec, src, s)
		bounds := full.Rect
		job = func(p layout.Placement) (*image.RGBA, error) {
			r := p.Rect.Image()
			if p.Rect.Empty() {
				return nil, fmt.Errorf("zero-area placement")
			}
			if !r.In(bounds) {
				return nil, fmt.Errorf("placement outside %dx%d canvas", bounds.Dx(), bounds.Dy())
			}
			return transform.Orient(full.SubImage(r), p.Output.Transform), nil
		}
	} else {
		job = func(p layout.Placement) (*image.RGBA, error) {
			if p.Rect.Empty() {
				return nil, fmt.Errorf("zero-area placement")
			}
			eff := renderPerOutput(mode, p.Rect.Width, p.Rect.Height, src, spec.Background, s)
			return transform.Orient(eff, p.Output.Transform), nil
		}
	}

	results := c.run(ctx, placements, job)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		out      = make([]Rendition, 0, len(placements))
		failures []OutputFailure
	)
	for i, p := range placements {
		res := results[i]
		if res.err != nil {
			failures = append(failures, OutputFailure{Output: p.Output.Name, Rect: p.Rect, Err: res.err})
			continue
		}
		out = append(out, Rendition{
			Output:    p.Output.Name,
			Image:     res.img,
			Rect:      p.Rect,
			Transform: p.Output.Transform,
		})
	}

	c.logger.Debug("render complete",
		"mode", string(mode),
		"filter", string(filter),
		"canvas", canvas.String(),
		"outputs", len(out),
		"failed", len(failures),
		"elapsed", time.Since(start))

	if len(failures) > 0 {
		rendered := make([]string, 0, len(out))
		for _, r := range out {
			rendered = append(rendered, r.Output)
		}
		return out, &PartialRenderError{Rendered: rendered, Failures: failures}
	}
	return out, nil
}

// renderCanvas resamples src once onto a canvas-sized raster.
func (c *Compositor) renderCanvas(canvas layout.Canvas, spec Spec, src image.Image, s scaler) *image.RGBA {
	full := filled(canvas.Width, canvas.Height, spec.Background)
	sb := src.Bounds()
	dr := stretchPlacement(canvas.Width, canvas.Height, sb.Dx(), sb.Dy(), spec.Offset, spec.Scale)
	place(full, dr, src, s)
	c.logger.Debug("canvas resampled",
		"canvas", fmt.Sprintf("%dx%d", canvas.Width, canvas.Height),
		"source", fmt.Sprintf("%dx%d", sb.Dx(), sb.Dy()),
		"placement", dr.String())
	return full
}

type jobResult struct {
	img *image.RGBA
	err error
}

// run executes job for every placement on a pool bounded by the output count
// and the configured worker limit. Each job writes only its own result slot.
func (c *Compositor) run(ctx context.Context, placements []layout.Placement, job func(layout.Placement) (*image.RGBA, error)) []jobResult {
	results := make([]jobResult, len(placements))
	workers := min(c.workers, len(placements))

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				img, err := job(placements[i])
				results[i] = jobResult{img: img, err: err}
			}
		}()
	}

	for i := range placements {
		if ctx.Err() != nil {
			break
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return results
}
