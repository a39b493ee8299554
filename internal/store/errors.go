package store

import (
	"fmt"
	"strings"
)

// PersistenceIOError reports a failed read or write of a record or raster.
// The previous record is left intact.
type PersistenceIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceIOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceIOError) Unwrap() error { return e.Err }

// StaleConfigError lists outputs the stored record references that are no
// longer present.
type StaleConfigError struct {
	Outputs []string
}

func (e *StaleConfigError) Error() string {
	return fmt.Sprintf("stored record references missing outputs: %s", strings.Join(e.Outputs, ", "))
}
