// Package store persists rendered backgrounds and the record describing
// them, and plans incremental restores against the current outputs.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/layout"
)

// RecordVersion is bumped when the record layout changes incompatibly.
const RecordVersion = 1

const (
	recordFile = "current.json"
	rasterExt  = ".png"
	tempExt    = ".tmp"
)

// SpecRecord is the persisted form of a compositor.Spec plus the source
// content digest.
type SpecRecord struct {
	Mode       compositor.Mode   `json:"mode"`
	Source     string            `json:"source"`
	Digest     string            `json:"digest"`
	Offset     compositor.Offset `json:"offset"`
	Scale      float64           `json:"scale,omitempty"`
	Background string            `json:"background"`
	Filter     compositor.Filter `json:"filter"`
}

// Spec converts the record back into a renderable spec.
func (r SpecRecord) Spec() (compositor.Spec, error) {
	bg, err := compositor.ParseColor(r.Background)
	if err != nil {
		return compositor.Spec{}, err
	}
	return compositor.Spec{
		Mode:       r.Mode,
		Source:     r.Source,
		Offset:     r.Offset,
		Scale:      r.Scale,
		Background: bg,
		Filter:     r.Filter,
	}, nil
}

func specRecord(spec compositor.Spec, digest string) SpecRecord {
	mode, err := compositor.ParseMode(string(spec.Mode))
	if err != nil {
		mode = spec.Mode
	}
	filter, err := compositor.ParseFilter(string(spec.Filter))
	if err != nil {
		filter = spec.Filter
	}
	return SpecRecord{
		Mode:       mode,
		Source:     spec.Source,
		Digest:     digest,
		Offset:     spec.Offset,
		Scale:      spec.Scale,
		Background: compositor.FormatColor(spec.Background),
		Filter:     filter,
	}
}

// CanvasRecord is the stored canvas size and origin.
type CanvasRecord struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	OriginX int `json:"origin_x"`
	OriginY int `json:"origin_y"`
}

// Entry is the stored state of one output.
type Entry struct {
	Output      geometry.Output `json:"output"`
	Rect        layout.Rect     `json:"rect"`
	Fingerprint string          `json:"fingerprint"`
	Path        string          `json:"path"`
}

// Record is the persisted configuration written after every apply or
// restore.
type Record struct {
	Version int             `json:"version"`
	Mode    compositor.Mode `json:"mode"`
	Spec    SpecRecord      `json:"spec"`
	Canvas  CanvasRecord    `json:"canvas"`
	Outputs []Entry         `json:"outputs"`
	SavedAt time.Time       `json:"saved_at"`
}

// Entry returns the stored entry for name.
func (r *Record) Entry(name string) (Entry, bool) {
	for _, e := range r.Outputs {
		if e.Output.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Geometry returns the stored output snapshot, suitable for a restore when
// no live output list is available.
func (r *Record) Geometry() []geometry.Output {
	out := make([]geometry.Output, 0, len(r.Outputs))
	for _, e := range r.Outputs {
		o := e.Output
		o.Active = true
		out = append(out, o)
	}
	return out
}

// Store manages one directory of rasters plus its record.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// RecordPath returns the path of the record file.
func (s *Store) RecordPath() string {
	return filepath.Join(s.dir, recordFile)
}

// RasterPath returns the stable raster path for an output.
func (s *Store) RasterPath(output string) string {
	return filepath.Join(s.dir, sanitizeName(output)+rasterExt)
}

// Load reads the record. It returns nil, nil when none has been saved yet.
func (s *Store) Load() (*Record, error) {
	path := s.RecordPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &PersistenceIOError{Op: "read", Path: path, Err: err}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &PersistenceIOError{Op: "parse", Path: path, Err: err}
	}
	if rec.Version > RecordVersion {
		return nil, &PersistenceIOError{Op: "parse", Path: path, Err: fmt.Errorf("unsupported record version %d", rec.Version)}
	}
	return &rec, nil
}

// Save writes every rendition's raster and then the record. Entries passed
// in reused are carried over unchanged for outputs that were not rendered;
// reused entries for outputs absent from canvas are kept at the end of the
// record. Placements with neither a rendition nor a reused entry are left
// out so the next restore recomputes them. Rendition paths are filled in on
// success.
//
// Every raster and the record are staged before anything is renamed, so an
// encode or write failure leaves the previous rasters and record untouched.
func (s *Store) Save(canvas layout.Canvas, spec compositor.Spec, digest string, renditions []compositor.Rendition, reused ...Entry) (*Record, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, &PersistenceIOError{Op: "create", Path: s.dir, Err: err}
	}

	rendered := make(map[string]int, len(renditions))
	for i, r := range renditions {
		rendered[r.Output] = i
	}
	carried := make(map[string]Entry, len(reused))
	for _, e := range reused {
		carried[e.Output.Name] = e
	}

	sr := specRecord(spec, digest)
	rec := &Record{
		Version: RecordVersion,
		Mode:    sr.Mode,
		Spec:    sr,
		Canvas: CanvasRecord{
			Width:   canvas.Width,
			Height:  canvas.Height,
			OriginX: canvas.Origin.X,
			OriginY: canvas.Origin.Y,
		},
		Outputs: make([]Entry, 0, len(canvas.Placements)),
		SavedAt: time.Now().UTC(),
	}

	var staged []stagedFile
	defer func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}()
	for _, p := range canvas.Placements {
		name := p.Output.Name
		if i, ok := rendered[name]; ok {
			path := s.RasterPath(name)
			img := renditions[i].Image
			tmp, err := stage(path, func(w io.Writer) error { return png.Encode(w, img) })
			if err != nil {
				return nil, err
			}
			staged = append(staged, stagedFile{tmp: tmp, path: path})
			delete(carried, name)
			rec.Outputs = append(rec.Outputs, Entry{
				Output:      p.Output.Output,
				Rect:        p.Rect,
				Fingerprint: Fingerprint(sr, canvas, p),
				Path:        path,
			})
			continue
		}
		if e, ok := carried[name]; ok {
			rec.Outputs = append(rec.Outputs, e)
			delete(carried, name)
		}
	}
	// Carried entries without a placement are retained stale entries.
	for _, e := range reused {
		if _, ok := carried[e.Output.Name]; ok {
			rec.Outputs = append(rec.Outputs, e)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, &PersistenceIOError{Op: "encode", Path: s.RecordPath(), Err: err}
	}
	tmp, err := stage(s.RecordPath(), func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
	if err != nil {
		return nil, err
	}
	// The record is renamed last.
	staged = append(staged, stagedFile{tmp: tmp, path: s.RecordPath()})

	for len(staged) > 0 {
		if err := commit(staged[0].tmp, staged[0].path); err != nil {
			return nil, err
		}
		staged = staged[1:]
	}
	for i := range renditions {
		renditions[i].Path = s.RasterPath(renditions[i].Output)
	}
	return rec, nil
}

type stagedFile struct {
	tmp  string
	path string
}

// stage writes, flushes and syncs a temp file next to path and returns its
// name. The temp file is removed on every failure path.
func stage(path string, write func(io.Writer) error) (tmp string, err error) {
	dir, base := filepath.Split(path)
	f, err := os.CreateTemp(dir, "."+base+".*"+tempExt)
	if err != nil {
		return "", &PersistenceIOError{Op: "create", Path: path, Err: err}
	}
	tmp = f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return "", &PersistenceIOError{Op: "write", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return "", &PersistenceIOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		return "", &PersistenceIOError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &PersistenceIOError{Op: "close", Path: path, Err: err}
	}
	return tmp, nil
}

func commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		return &PersistenceIOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// sanitizeName maps an output name onto a safe file name.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "output"
	}
	return s
}
