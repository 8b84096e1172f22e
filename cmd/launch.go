package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/appgate/internal/bootstrap"
	"github.com/mj1618/appgate/internal/output"
	"github.com/mj1618/appgate/internal/settings"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Decide whether the app can start or must ask for permissions",
	Long: `Read the permissions state and the first-launch flag once and print the
startup decision.

has_permissions is false while a required permission is missing.
show_permissions_ui is true on first launch or while a required permission
is missing.

Use --wait to block until the required permissions are granted and
--complete to record that the first launch finished.`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().Bool("complete", false, "Mark the first launch as completed")
	launchCmd.Flags().Bool("wait", false, "Wait until required permissions are granted")
	launchCmd.Flags().Int("timeout", 0, "Max seconds to wait with --wait (0 = no limit)")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	complete, _ := cmd.Flags().GetBool("complete")
	wait, _ := cmd.Flags().GetBool("wait")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := settings.Open(a.cfg.StatePath)
	if err != nil {
		return err
	}

	ctrl := bootstrap.New(a.perms, store, a.log)
	decision := ctrl.Launch()

	if wait && !decision.HasPermissions {
		decision, err = waitForPermissions(cmd, ctrl, time.Duration(timeoutSec)*time.Second)
		if err != nil {
			return err
		}
	}

	if complete {
		if err := ctrl.CompleteFirstLaunch(); err != nil {
			return fmt.Errorf("failed to save %s: %w", store.Path(), err)
		}
	}

	return output.Fprint(cmd.OutOrStdout(), decision)
}

func waitForPermissions(cmd *cobra.Command, ctrl *bootstrap.Controller, timeout time.Duration) (bootstrap.Decision, error) {
	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	d, err := ctrl.WaitReady(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return d, fmt.Errorf("timed out after %s waiting for required permissions", timeout)
	}
	return d, err
}
