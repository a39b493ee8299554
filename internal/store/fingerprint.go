package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/layout"
)

// fingerprintInput is everything that determines one output's raster.
// Outside stretch mode a raster depends only on its own output's size,
// scale and transform, so position and canvas fields are left zero.
type fingerprintInput struct {
	Digest     string
	Mode       compositor.Mode
	Offset     compositor.Offset
	Scale      float64
	Background string
	Filter     compositor.Filter
	Output     geometry.Output
	Canvas     CanvasRecord
	At         layout.Rect
}

// Fingerprint hashes the inputs that produce the raster for placement p.
func Fingerprint(spec SpecRecord, canvas layout.Canvas, p layout.Placement) string {
	in := fingerprintInput{
		Digest:     spec.Digest,
		Mode:       spec.Mode,
		Offset:     spec.Offset,
		Scale:      spec.Scale,
		Background: spec.Background,
		Filter:     spec.Filter,
		Output:     p.Output.Output,
	}
	if mode, err := compositor.ParseMode(string(spec.Mode)); err == nil {
		in.Mode = mode
		if mode.PerOutput() {
			in.Output.X, in.Output.Y = 0, 0
		} else {
			in.Canvas = CanvasRecord{Width: canvas.Width, Height: canvas.Height}
			in.At = p.Rect
		}
	}
	if filter, err := compositor.ParseFilter(string(spec.Filter)); err == nil {
		in.Filter = filter
	}
	// Active is presentation state; it never changes a rendered raster.
	in.Output.Active = true

	h, err := hashstructure.Hash(in, hashstructure.FormatV2, nil)
	if err != nil {
		// An empty fingerprint never matches, so the output is recomputed.
		return ""
	}
	return fmt.Sprintf("%016x", h)
}

// Digest returns the sha256 content digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
