package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Removed describes a file deleted by Cleanup.
type Removed struct {
	Path string
	Size int64
}

// Cleanup deletes rasters in the store directory that rec does not
// reference, plus temp files left by interrupted writes. A nil record
// removes every raster.
func (s *Store) Cleanup(rec *Record) ([]Removed, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &PersistenceIOError{Op: "list", Path: s.dir, Err: err}
	}

	keep := make(map[string]bool)
	if rec != nil {
		for _, e := range rec.Outputs {
			keep[filepath.Base(e.Path)] = true
		}
	}

	var removed []Removed
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, tempExt):
		case strings.HasSuffix(name, rasterExt) && !keep[name]:
		default:
			continue
		}

		path := filepath.Join(s.dir, name)
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, &PersistenceIOError{Op: "remove", Path: path, Err: err}
		}
		removed = append(removed, Removed{Path: path, Size: size})
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Path < removed[j].Path })
	return removed, nil
}
