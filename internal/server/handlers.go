package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/appgate/internal/output"
	"github.com/mj1618/appgate/internal/permissions"
	"gopkg.in/yaml.v3"
)

// CursorResult is returned by the cursor_hide and cursor_show tools.
type CursorResult struct {
	Action string `yaml:"action" json:"action"`
	Hidden bool   `yaml:"hidden" json:"hidden"`
	Count  int    `yaml:"count"  json:"count"`
}

// StopResult is returned by permissions_stop_checks.
type StopResult struct {
	Stopped bool              `yaml:"stopped" json:"stopped"`
	State   permissions.State `yaml:"state"   json:"state"`
}

func toText(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

func (s *Server) handleStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	verbose := BoolParam(params, "verbose", false)

	if BoolParam(params, "check", false) {
		for _, p := range s.perms.AllPermissions() {
			p.Check()
		}
		s.perms.Flush()
	}

	return toText(output.NewStatusResult(s.perms, time.Now().Unix(), verbose)), nil
}

func (s *Server) handleRequest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	kind, err := permissions.ParseKind(StringParam(params, "kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := s.perms.Permission(kind)
	if p == nil {
		return mcp.NewToolResultError(fmt.Sprintf("permission %s is not tracked", kind)), nil
	}

	s.log.Info().Str("permission", string(kind)).Msg("requesting permission")
	p.Request()
	p.Check()
	s.perms.Flush()

	return toText(output.NewPermissionInfo(p, true)), nil
}

func (s *Server) handleStopChecks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.perms.StopAllChecks()
	s.perms.Flush()
	return toText(StopResult{Stopped: true, State: s.perms.State()}), nil
}

func (s *Server) handleCursorHide(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	forMs := IntParam(request.GetArguments(), "for_ms", 0)
	if forMs < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("for_ms must not be negative, got %d", forMs)), nil
	}

	count := s.guard.Acquire()
	if count == 0 {
		// The guard already logged the OS error and reset its count.
		return mcp.NewToolResultError("failed to hide cursor"), nil
	}
	if forMs > 0 {
		time.AfterFunc(time.Duration(forMs)*time.Millisecond, func() { s.guard.Release() })
	}
	return toText(CursorResult{Action: "hide", Hidden: true, Count: count}), nil
}

func (s *Server) handleCursorShow(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := s.guard.Release()
	return toText(CursorResult{Action: "show", Hidden: count > 0, Count: count}), nil
}

func (s *Server) handleCursorLocation(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.mouse == nil {
		return mcp.NewToolResultError("mouse not available on this platform"), nil
	}
	p, ok := s.mouse.Location()
	if !ok {
		return mcp.NewToolResultError("failed to read cursor location"), nil
	}
	return toText(p), nil
}
