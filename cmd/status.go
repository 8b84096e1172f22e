package cmd

import (
	"time"

	"github.com/mj1618/appgate/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the permissions state",
	Long:  "Check every tracked permission once and print the aggregate state (missing, hasRequired, hasAll).",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolP("verbose", "v", false, "Include permission details and System Settings links")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	verbose, _ := cmd.Flags().GetBool("verbose")
	return output.Fprint(cmd.OutOrStdout(), output.NewStatusResult(a.perms, time.Now().Unix(), verbose))
}
