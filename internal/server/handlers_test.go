package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/appgate/internal/cursor"
	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type fakeChecker struct {
	mu        sync.Mutex
	ax, sr    bool
	requested []string
}

func (f *fakeChecker) AccessibilityGranted() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ax, nil
}

func (f *fakeChecker) RequestAccessibility() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, "accessibility")
	f.ax = true
	return nil
}

func (f *fakeChecker) ScreenRecordingGranted() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sr, nil
}

func (f *fakeChecker) RequestScreenRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, "screen-recording")
	return nil
}

func (f *fakeChecker) set(ax, sr bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ax, f.sr = ax, sr
}

type fakeCursor struct {
	mu           sync.Mutex
	hides, shows int
	hideErr      error
}

func (c *fakeCursor) HideCursor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hides++
	return c.hideErr
}

func (c *fakeCursor) ShowCursor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shows++
	return nil
}

type fakeMouse struct {
	loc platform.Point
	err error
}

func (m *fakeMouse) Location() (platform.Point, error)       { return m.loc, m.err }
func (m *fakeMouse) Warp(platform.Point) error               { return nil }
func (m *fakeMouse) Associate(bool) error                    { return nil }
func (m *fakeMouse) ButtonPressed(platform.MouseButton) bool { return false }
func (m *fakeMouse) SecondsSince(platform.EventKind) float64 { return 0 }

func newTestServer(t *testing.T, checker *fakeChecker, ctrl *fakeCursor, mouse platform.Mouse) *Server {
	t.Helper()
	perms := permissions.New(
		permissions.WithChecker(checker),
		permissions.WithLogger(zerolog.Nop()),
		permissions.WithPollInterval(time.Hour),
	)
	t.Cleanup(perms.Close)
	var m *cursor.Mouse
	if mouse != nil {
		m = cursor.NewMouse(mouse, zerolog.Nop())
	}
	return New(perms, cursor.NewGuard(ctrl, zerolog.Nop()), m, zerolog.Nop())
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestHandleStatus(t *testing.T) {
	checker := &fakeChecker{ax: true}
	s := newTestServer(t, checker, &fakeCursor{}, nil)

	res, err := s.handleStatus(context.Background(), callTool("permissions_status", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var out struct {
		State       string `yaml:"state"`
		Permissions []struct {
			Kind        string `yaml:"kind"`
			Granted     bool   `yaml:"granted"`
			SettingsURL string `yaml:"settings_url"`
		} `yaml:"permissions"`
	}
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("result is not YAML: %v", err)
	}
	if out.State != "hasRequired" {
		t.Errorf("expected hasRequired, got %q", out.State)
	}
	if len(out.Permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(out.Permissions))
	}
	if out.Permissions[0].Kind != "accessibility" || !out.Permissions[0].Granted {
		t.Errorf("unexpected accessibility entry: %+v", out.Permissions[0])
	}
	if out.Permissions[0].SettingsURL != "" {
		t.Error("settings_url should be omitted without verbose")
	}
}

func TestHandleStatusCheck(t *testing.T) {
	checker := &fakeChecker{}
	s := newTestServer(t, checker, &fakeCursor{}, nil)
	checker.set(true, true)

	res, _ := s.handleStatus(context.Background(), callTool("permissions_status", map[string]interface{}{"check": true}))
	if !strings.Contains(resultText(t, res), "state: hasAll") {
		t.Errorf("expected refreshed state, got:\n%s", resultText(t, res))
	}

	res, _ = s.handleStatus(context.Background(), callTool("permissions_status", map[string]interface{}{"verbose": true}))
	if !strings.Contains(resultText(t, res), "x-apple.systempreferences:") {
		t.Errorf("expected settings links in verbose output, got:\n%s", resultText(t, res))
	}
}

func TestHandleRequest(t *testing.T) {
	checker := &fakeChecker{}
	s := newTestServer(t, checker, &fakeCursor{}, nil)

	res, err := s.handleRequest(context.Background(), callTool("permissions_request", map[string]interface{}{"kind": "accessibility"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if len(checker.requested) != 1 || checker.requested[0] != "accessibility" {
		t.Errorf("expected one accessibility request, got %v", checker.requested)
	}
	if !strings.Contains(resultText(t, res), "granted: true") {
		t.Errorf("expected granted after request, got:\n%s", resultText(t, res))
	}
	if got := s.perms.State(); got != permissions.StateHasRequired {
		t.Errorf("expected hasRequired, got %s", got)
	}
}

func TestHandleRequestInvalidKind(t *testing.T) {
	s := newTestServer(t, &fakeChecker{}, &fakeCursor{}, nil)

	for _, args := range []map[string]interface{}{
		{"kind": "camera"},
		{},
	} {
		res, err := s.handleRequest(context.Background(), callTool("permissions_request", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Errorf("expected tool error for args %v", args)
		}
	}
}

func TestHandleStopChecks(t *testing.T) {
	checker := &fakeChecker{}
	s := newTestServer(t, checker, &fakeCursor{}, nil)

	res, _ := s.handleStopChecks(context.Background(), callTool("permissions_stop_checks", nil))
	if !strings.Contains(resultText(t, res), "stopped: true") {
		t.Errorf("unexpected result:\n%s", resultText(t, res))
	}

	checker.set(true, true)
	for _, p := range s.perms.AllPermissions() {
		p.Check()
	}
	s.perms.Flush()
	if got := s.perms.State(); got != permissions.StateMissing {
		t.Errorf("state changed after stop: %s", got)
	}
}

func TestHandleCursorHideShow(t *testing.T) {
	ctrl := &fakeCursor{}
	s := newTestServer(t, &fakeChecker{}, ctrl, nil)
	ctx := context.Background()

	s.handleCursorHide(ctx, callTool("cursor_hide", nil))
	res, _ := s.handleCursorHide(ctx, callTool("cursor_hide", nil))
	if !strings.Contains(resultText(t, res), "count: 2") {
		t.Errorf("expected count 2, got:\n%s", resultText(t, res))
	}
	s.handleCursorShow(ctx, callTool("cursor_show", nil))
	res, _ = s.handleCursorShow(ctx, callTool("cursor_show", nil))
	if !strings.Contains(resultText(t, res), "hidden: false") {
		t.Errorf("expected visible cursor, got:\n%s", resultText(t, res))
	}
	if ctrl.hides != 1 || ctrl.shows != 1 {
		t.Errorf("expected 1 hide and 1 show, got %d and %d", ctrl.hides, ctrl.shows)
	}
}

func TestHandleCursorHideFailure(t *testing.T) {
	ctrl := &fakeCursor{hideErr: errors.New("boom")}
	s := newTestServer(t, &fakeChecker{}, ctrl, nil)

	res, _ := s.handleCursorHide(context.Background(), callTool("cursor_hide", nil))
	if !res.IsError {
		t.Error("expected tool error when hide fails")
	}
	if s.guard.Count() != 0 {
		t.Errorf("expected count reset to 0, got %d", s.guard.Count())
	}
}

func TestHandleCursorLocation(t *testing.T) {
	s := newTestServer(t, &fakeChecker{}, &fakeCursor{}, &fakeMouse{loc: platform.Point{X: 10, Y: 20.5}})
	res, _ := s.handleCursorLocation(context.Background(), callTool("cursor_location", nil))
	text := resultText(t, res)
	if !strings.Contains(text, "x: 10") || !strings.Contains(text, "y: 20.5") {
		t.Errorf("unexpected location:\n%s", text)
	}

	s = newTestServer(t, &fakeChecker{}, &fakeCursor{}, &fakeMouse{err: errors.New("no display")})
	res, _ = s.handleCursorLocation(context.Background(), callTool("cursor_location", nil))
	if !res.IsError {
		t.Error("expected tool error when location fails")
	}

	s = newTestServer(t, &fakeChecker{}, &fakeCursor{}, nil)
	res, _ = s.handleCursorLocation(context.Background(), callTool("cursor_location", nil))
	if !res.IsError {
		t.Error("expected tool error without a mouse")
	}
}

func TestServeUnsupportedTransport(t *testing.T) {
	s := newTestServer(t, &fakeChecker{}, &fakeCursor{}, nil)
	err := s.Serve(context.Background(), Config{Transport: "carrier-pigeon"})
	if err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Errorf("expected unsupported transport error, got %v", err)
	}
}

func TestServeStdioStopsOnCancel(t *testing.T) {
	s := newTestServer(t, &fakeChecker{}, &fakeCursor{}, nil)
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: zerolog.InfoLevel, Format: "json", Out: &buf})
	ctx, cancel := context.WithCancel(logging.WithComponent(logging.WithContext(context.Background(), log), "mcp"))
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, Config{Transport: TransportStdio, Stdin: pr, Stdout: io.Discard})
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
		if !strings.Contains(buf.String(), "serving MCP over stdio") || !strings.Contains(buf.String(), `"component":"mcp"`) {
			t.Errorf("expected transport log from context logger, got %q", buf.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stdio server did not stop after cancel")
	}
}

func TestHandleCursorHideFor(t *testing.T) {
	ctrl := &fakeCursor{}
	s := newTestServer(t, &fakeChecker{}, ctrl, nil)

	res, _ := s.handleCursorHide(context.Background(), callTool("cursor_hide", map[string]interface{}{"for_ms": float64(20)}))
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "hidden: true") {
		t.Errorf("expected hidden cursor, got:\n%s", resultText(t, res))
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.guard.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("hide was not released after for_ms")
		}
		time.Sleep(5 * time.Millisecond)
	}

	res, _ = s.handleCursorHide(context.Background(), callTool("cursor_hide", map[string]interface{}{"for_ms": float64(-1)}))
	if !res.IsError {
		t.Error("expected tool error for negative for_ms")
	}
}

func TestHandleCursorHide_ConcurrentShowDoesNotFailHide(t *testing.T) {
	s := newTestServer(t, &fakeChecker{}, &fakeCursor{}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, _ := s.handleCursorHide(ctx, callTool("cursor_hide", nil))
			if res.IsError {
				t.Error("successful hide reported as failure")
			}
		}()
		go func() {
			defer wg.Done()
			s.handleCursorShow(ctx, callTool("cursor_show", nil))
		}()
	}
	wg.Wait()
}
