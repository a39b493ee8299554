package compositor

import (
	"fmt"
	"strings"

	"github.com/1broseidon/spanwall/internal/layout"
)

// UnsupportedFormatError reports a source image that could not be decoded.
type UnsupportedFormatError struct {
	Path string
	Err  error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("cannot decode image %q: %v", e.Path, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// OutputFailure records why a single output could not be rendered.
type OutputFailure struct {
	Output string
	Rect   layout.Rect
	Err    error
}

func (f OutputFailure) String() string {
	return fmt.Sprintf("%s (%dx%d at %d,%d): %v", f.Output, f.Rect.Width, f.Rect.Height, f.Rect.X, f.Rect.Y, f.Err)
}

// PartialRenderError is returned alongside the successful renditions when
// some outputs failed. Callers decide whether to apply the subset.
type PartialRenderError struct {
	Rendered []string
	Failures []OutputFailure
}

func (e *PartialRenderError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	total := len(e.Rendered) + len(e.Failures)
	return fmt.Sprintf("rendered %d of %d outputs; failed: %s", len(e.Rendered), total, strings.Join(parts, "; "))
}
