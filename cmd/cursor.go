package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mj1618/appgate/internal/cursor"
	"github.com/mj1618/appgate/internal/output"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/spf13/cobra"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Hide, locate or move the mouse cursor",
}

var cursorHideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the cursor for a while, then show it again",
	Long: `Hide the mouse cursor through the shared hide counter, wait, then release it.

The cursor is shown again when --for elapses or on Ctrl+C.`,
	RunE: runCursorHide,
}

var cursorLocationCmd = &cobra.Command{
	Use:   "location",
	Short: "Print the cursor position",
	RunE:  runCursorLocation,
}

var cursorWarpCmd = &cobra.Command{
	Use:   "warp <x,y>",
	Short: "Move the cursor without generating mouse events",
	Args:  cobra.ExactArgs(1),
	RunE:  runCursorWarp,
}

// CursorLocation is the output of `cursor location`.
type CursorLocation struct {
	X                float64 `yaml:"x"                        json:"x"`
	Y                float64 `yaml:"y"                        json:"y"`
	Pressed          bool    `yaml:"pressed"                  json:"pressed"`
	RecentlyMoved    bool    `yaml:"recently_moved,omitempty"    json:"recently_moved,omitempty"`
	RecentlyScrolled bool    `yaml:"recently_scrolled,omitempty" json:"recently_scrolled,omitempty"`
}

func init() {
	rootCmd.AddCommand(cursorCmd)
	cursorCmd.AddCommand(cursorHideCmd, cursorLocationCmd, cursorWarpCmd)

	cursorHideCmd.Flags().Duration("for", 2*time.Second, "How long to keep the cursor hidden")
	cursorLocationCmd.Flags().String("button", "any", "Report whether this button is pressed: left, right, middle, any")
	cursorLocationCmd.Flags().Duration("moved-within", 0, "Also report whether the mouse moved within this window")
	cursorLocationCmd.Flags().Duration("scrolled-within", 0, "Also report whether the scroll wheel moved within this window")
}

func runCursorHide(cmd *cobra.Command, args []string) error {
	d, _ := cmd.Flags().GetDuration("for")
	if d <= 0 {
		return fmt.Errorf("--for must be positive, got %s", d)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cursor.Hide()
	defer cursor.Show()
	if !a.guard.Hidden() {
		return fmt.Errorf("failed to hide cursor")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-time.After(d):
	case <-sig:
	case <-cmd.Context().Done():
	}
	return nil
}

func runCursorLocation(cmd *cobra.Command, args []string) error {
	buttonName, _ := cmd.Flags().GetString("button")
	movedWithin, _ := cmd.Flags().GetDuration("moved-within")
	scrolledWithin, _ := cmd.Flags().GetDuration("scrolled-within")
	button, err := platform.ParseMouseButton(buttonName)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, ok := a.mouse.Location()
	if !ok {
		return fmt.Errorf("failed to read cursor location")
	}
	res := CursorLocation{X: p.X, Y: p.Y, Pressed: a.mouse.ButtonPressed(button)}
	if movedWithin > 0 {
		res.RecentlyMoved = a.mouse.LastMovementWithin(movedWithin)
	}
	if scrolledWithin > 0 {
		res.RecentlyScrolled = a.mouse.LastScrollWithin(scrolledWithin)
	}
	return output.Fprint(cmd.OutOrStdout(), res)
}

func runCursorWarp(cmd *cobra.Command, args []string) error {
	p, err := platform.ParsePoint(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Detach the cursor from the mouse so the warp does not fight pending
	// hardware deltas, then reattach.
	a.mouse.Associate(false)
	a.mouse.Warp(p)
	a.mouse.Associate(true)

	return output.Fprint(cmd.OutOrStdout(), p)
}
