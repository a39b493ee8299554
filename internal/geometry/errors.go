package geometry

import "fmt"

// InvalidGeometryError reports an output descriptor that cannot take part
// in layout.
type InvalidGeometryError struct {
	Output string
	Width  int
	Height int
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	if e.Width == 0 && e.Height == 0 {
		return fmt.Sprintf("invalid output %q: %s", e.Output, e.Reason)
	}
	return fmt.Sprintf("invalid output %q (%dx%d): %s", e.Output, e.Width, e.Height, e.Reason)
}

// EmptyOutputSetError reports that no active output remains to render to.
type EmptyOutputSetError struct {
	// Total is the number of outputs received, active or not.
	Total int
}

func (e *EmptyOutputSetError) Error() string {
	if e.Total == 0 {
		return "no outputs provided"
	}
	return fmt.Sprintf("no active outputs (%d disabled)", e.Total)
}
