// Package mcp exposes the background operations as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/spanwall/internal/geometry"
	"github.com/1broseidon/spanwall/internal/wallpaper"
)

const (
	ServerName    = "spanwall"
	ServerVersion = "0.1.0"
)

// OutputSource returns the live output list.
type OutputSource func(ctx context.Context) ([]geometry.Output, error)

// Options configures a Server.
type Options struct {
	Manager *wallpaper.Manager
	Outputs OutputSource
	Logger  *slog.Logger
}

// Server is the MCP server for background management.
type Server struct {
	mcpServer *mcpsdk.Server
	manager   *wallpaper.Manager
	outputs   OutputSource
	logger    *slog.Logger
}

// NewServer creates a new MCP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("mcp server requires a background manager")
	}
	if opts.Outputs == nil {
		return nil, fmt.Errorf("mcp server requires an output source")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		manager: opts.Manager,
		outputs: opts.Outputs,
		logger:  logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List the connected outputs with their native mode, position, scale, transform and effective (rotated) size. Pass stored=true to list the geometry saved with the last background instead.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_background",
		Description: "Render an image across all active outputs and store one pre-oriented raster per output. In stretch mode the image spans the combined desktop; the other modes place it on each output independently. Returns the stored rasters and the swaybg commands that display them. Outputs that fail to render are listed in failures while the rest are still stored.",
	}, s.handleApplyBackground)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_backgrounds",
		Description: "Restore the last background. Stored rasters are reused for unchanged outputs and only changed outputs are re-rendered. Outputs that are no longer connected are reported as stale and kept unless drop_stale is set.",
	}, s.handleRestoreBackgrounds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cleanup_backgrounds",
		Description: "Delete stored rasters that the current background no longer references, plus temp files left by interrupted writes.",
	}, s.handleCleanupBackgrounds)
}
