// Package server exposes the permissions aggregator and the cursor guard as
// MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/appgate/internal/cursor"
	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/mj1618/appgate/internal/version"
	"github.com/rs/zerolog"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	Stdin     io.Reader
	Stdout    io.Writer
}

// Server wraps the MCP server.
type Server struct {
	perms *permissions.Permissions
	guard *cursor.Guard
	mouse *cursor.Mouse
	log   zerolog.Logger
	mcp   *mcpserver.MCPServer
}

// New creates a server with every tool registered. mouse may be nil.
func New(perms *permissions.Permissions, guard *cursor.Guard, mouse *cursor.Mouse, log zerolog.Logger) *Server {
	s := &Server{
		perms: perms,
		guard: guard,
		mouse: mouse,
		log:   logging.Component(log, "mcp"),
		mcp:   mcpserver.NewMCPServer("appgate", version.Version),
	}
	s.registerTools()
	return s
}

// Serve runs the configured transport until ctx is cancelled or the
// transport fails. Transport messages go to the logger carried by ctx.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	log := logging.FromContext(ctx)
	switch cfg.Transport {
	case TransportStdio:
		log.Info().Msg("serving MCP over stdio")
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, cfg.Stdin, cfg.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case TransportStreamableHTTP:
		addr := fmt.Sprintf(":%d", cfg.Port)
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errc := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")
			errc <- httpServer.Start(addr)
		}()
		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Info().Msg("shutting down MCP HTTP server")
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("permissions_status",
			mcp.WithDescription("Report the aggregate permissions state (missing, hasRequired, hasAll) and whether each permission is granted"),
			mcp.WithBoolean("verbose", mcp.Description("Include details and System Settings links")),
			mcp.WithBoolean("check", mcp.Description("Query the OS before answering instead of using the last polled values")),
		),
		s.handleStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("permissions_request",
			mcp.WithDescription("Ask macOS to show the prompt for one permission, then report its current value"),
			mcp.WithString("kind", mcp.Description("Permission kind: accessibility, screen-recording"), mcp.Required()),
		),
		s.handleRequest,
	)

	s.mcp.AddTool(
		mcp.NewTool("permissions_stop_checks",
			mcp.WithDescription("Stop polling every permission. The state is frozen afterwards."),
		),
		s.handleStopChecks,
	)

	s.mcp.AddTool(
		mcp.NewTool("cursor_hide",
			mcp.WithDescription("Hide the mouse cursor. Nested calls are counted; each needs a matching cursor_show."),
			mcp.WithNumber("for_ms", mcp.Description("Release this hide automatically after the given milliseconds (0 = keep until cursor_show)")),
		),
		s.handleCursorHide,
	)

	s.mcp.AddTool(
		mcp.NewTool("cursor_show",
			mcp.WithDescription("Release one cursor_hide. The cursor reappears when the last one is released."),
		),
		s.handleCursorShow,
	)

	s.mcp.AddTool(
		mcp.NewTool("cursor_location",
			mcp.WithDescription("Report the current mouse cursor position in global display coordinates"),
		),
		s.handleCursorLocation,
	)
}
