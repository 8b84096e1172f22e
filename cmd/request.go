package cmd

import (
	"fmt"

	"github.com/mj1618/appgate/internal/output"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <kind>",
	Short: "Ask macOS to prompt for a permission",
	Long: `Trigger the system prompt for one permission and print its value afterwards.

Kinds:
  accessibility      required to read and drive other apps
  screen-recording   optional, enables window capture

macOS only prompts once per app. Use --open-settings to jump straight to the
matching System Settings pane instead.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE:      runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().Bool("open-settings", false, "Open the System Settings pane for the permission instead of prompting")
}

func kindNames() []string {
	names := make([]string, len(permissions.Kinds))
	for i, k := range permissions.Kinds {
		names[i] = string(k)
	}
	return names
}

func runRequest(cmd *cobra.Command, args []string) error {
	kind, err := permissions.ParseKind(args[0])
	if err != nil {
		return err
	}
	openSettings, _ := cmd.Flags().GetBool("open-settings")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.perms.Permission(kind)
	if p == nil {
		return fmt.Errorf("permission %s is not tracked", kind)
	}

	if openSettings {
		if a.provider.Settings == nil {
			return fmt.Errorf("opening System Settings is not supported on this platform")
		}
		if err := a.provider.Settings.OpenSettings(p.SettingsURL()); err != nil {
			return fmt.Errorf("failed to open settings: %w", err)
		}
	} else {
		p.Request()
	}

	p.Check()
	a.perms.Flush()
	return output.Fprint(cmd.OutOrStdout(), output.NewPermissionInfo(p, true))
}
