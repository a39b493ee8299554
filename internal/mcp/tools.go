package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/spanwall/internal/compositor"
	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/store"
	"github.com/1broseidon/spanwall/internal/wallpaper"
)

func (s *Server) handleListOutputs(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	var (
		outputs []geometry.Output
		err     error
	)
	if args.Stored {
		outputs, err = s.manager.StoredOutputs()
		if err == nil && outputs == nil {
			err = wallpaper.ErrNoRecord
		}
	} else {
		outputs, err = s.outputs(ctx)
	}
	if err != nil {
		return nil, ListOutputsOutput{}, err
	}

	rows := s.manager.ListOutputs(outputs)
	out := ListOutputsOutput{Outputs: make([]OutputInfo, 0, len(rows))}
	for _, r := range rows {
		out.Outputs = append(out.Outputs, OutputInfo{
			Name:            r.Name,
			Active:          r.Active,
			Width:           r.Width,
			Height:          r.Height,
			X:               r.X,
			Y:               r.Y,
			Scale:           r.ScaleOrDefault(),
			Transform:       r.Transform.String(),
			EffectiveWidth:  r.EffectiveWidth,
			EffectiveHeight: r.EffectiveHeight,
		})
	}
	return nil, out, nil
}

func (s *Server) handleApplyBackground(ctx context.Context, _ *mcpsdk.CallToolRequest, args ApplyBackgroundInput) (*mcpsdk.CallToolResult, ApplyBackgroundOutput, error) {
	req, err := applyRequest(args)
	if err != nil {
		return nil, ApplyBackgroundOutput{}, err
	}
	req.Outputs, err = s.outputs(ctx)
	if err != nil {
		return nil, ApplyBackgroundOutput{}, err
	}

	res, err := s.manager.Apply(ctx, req)
	failures, err := splitPartial(err)
	if err != nil {
		return nil, ApplyBackgroundOutput{}, err
	}
	s.logger.Debug("mcp apply_background", "image", args.Image, "failures", len(failures))

	return nil, ApplyBackgroundOutput{
		Mode:     string(res.Record.Mode),
		Canvas:   res.Canvas.String(),
		Entries:  entryInfos(res.Entries()),
		Failures: failures,
		Commands: commandInfos(res),
	}, nil
}

func (s *Server) handleRestoreBackgrounds(ctx context.Context, _ *mcpsdk.CallToolRequest, args RestoreBackgroundsInput) (*mcpsdk.CallToolResult, RestoreBackgroundsOutput, error) {
	req := wallpaper.RestoreRequest{DropStale: args.DropStale}
	if !args.UseStored {
		outputs, err := s.outputs(ctx)
		if err != nil {
			return nil, RestoreBackgroundsOutput{}, err
		}
		req.Outputs = outputs
	}

	res, err := s.manager.Restore(ctx, req)
	var stale *store.StaleConfigError
	if errors.As(err, &stale) {
		// Stale entries are reported in the output rather than as a failure.
		err = withoutStale(err)
	}
	failures, err := splitPartial(err)
	if err != nil {
		return nil, RestoreBackgroundsOutput{}, err
	}

	out := RestoreBackgroundsOutput{
		Dropped:  args.DropStale && len(res.Plan.Stale) > 0,
		Failures: failures,
		Entries:  entryInfos(res.Entries()),
		Commands: commandInfos(res),
	}
	for _, t := range res.Plan.Tasks {
		out.Tasks = append(out.Tasks, TaskInfo{Output: t.Output, Action: string(t.Action), Reason: t.Reason})
	}
	for _, e := range res.Plan.Stale {
		out.Stale = append(out.Stale, e.Output.Name)
	}
	return nil, out, nil
}

func (s *Server) handleCleanupBackgrounds(_ context.Context, _ *mcpsdk.CallToolRequest, _ CleanupBackgroundsInput) (*mcpsdk.CallToolResult, CleanupBackgroundsOutput, error) {
	removed, err := s.manager.Cleanup()
	if err != nil {
		return nil, CleanupBackgroundsOutput{}, err
	}
	out := CleanupBackgroundsOutput{Removed: make([]string, 0, len(removed))}
	for _, r := range removed {
		out.Removed = append(out.Removed, r.Path)
		out.Bytes += r.Size
	}
	out.Freed = humanize.Bytes(uint64(out.Bytes))
	return nil, out, nil
}

// applyRequest converts tool input into an apply request without outputs.
func applyRequest(args ApplyBackgroundInput) (wallpaper.ApplyRequest, error) {
	if args.Image == "" {
		return wallpaper.ApplyRequest{}, fmt.Errorf("image is required")
	}
	req := wallpaper.ApplyRequest{
		Image:  args.Image,
		Offset: compositor.Offset{X: args.OffsetX, Y: args.OffsetY},
		Scale:  args.Scale,
	}

	var err error
	if args.Mode != "" {
		if req.Mode, err = compositor.ParseMode(args.Mode); err != nil {
			return wallpaper.ApplyRequest{}, err
		}
	}
	if args.Filter != "" {
		if req.Filter, err = compositor.ParseFilter(args.Filter); err != nil {
			return wallpaper.ApplyRequest{}, err
		}
	}
	if args.Background != "" {
		bg, err := compositor.ParseColor(args.Background)
		if err != nil {
			return wallpaper.ApplyRequest{}, err
		}
		req.Background = &bg
	}
	if req.Overrides, err = wallpaper.ParseOrientations(args.Orientations); err != nil {
		return wallpaper.ApplyRequest{}, err
	}
	return req, nil
}

// splitPartial separates a partial render failure, which still produced a
// result, from errors that did not.
func splitPartial(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var partial *compositor.PartialRenderError
	if !errors.As(err, &partial) {
		return nil, err
	}
	if withoutPartial(err) != nil {
		return nil, err
	}
	failures := make([]string, 0, len(partial.Failures))
	for _, f := range partial.Failures {
		failures = append(failures, f.String())
	}
	return failures, nil
}

// withoutStale drops *store.StaleConfigError from a joined error.
func withoutStale(err error) error {
	return filterJoined(err, func(e error) bool {
		var stale *store.StaleConfigError
		return errors.As(e, &stale)
	})
}

func withoutPartial(err error) error {
	return filterJoined(err, func(e error) bool {
		var partial *compositor.PartialRenderError
		return errors.As(e, &partial)
	})
}

func filterJoined(err error, drop func(error) bool) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		if drop(err) {
			return nil
		}
		return err
	}
	var keep []error
	for _, e := range joined.Unwrap() {
		if !drop(e) {
			keep = append(keep, e)
		}
	}
	return errors.Join(keep...)
}

func entryInfos(entries []store.Entry) []EntryInfo {
	out := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryInfo{
			Output:      e.Output.Name,
			Path:        e.Path,
			Fingerprint: e.Fingerprint,
			Rect:        fmt.Sprintf("%dx%d+%d+%d", e.Rect.Width, e.Rect.Height, e.Rect.X, e.Rect.Y),
		})
	}
	return out
}

func commandInfos(res *wallpaper.Result) []CommandInfo {
	cmds := wallpaper.Commands(res)
	out := make([]CommandInfo, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, CommandInfo{Command: c.String()})
	}
	return out
}
