package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/appgate/internal/config"
	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing appgate tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the permissions
state and the cursor guard as tools.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

On shutdown, polling stops and any cursor hides still held by clients are
released.

Examples:
  appgate serve
  appgate serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.perms, a.guard, a.mouse, a.log)

	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	err = config.Watch(configPath, a.log, func(c *config.Config) {
		logging.SetLevel(logging.ParseLevel(c.Logging.Level))
		a.log.Info().Str("level", c.Logging.Level).Msg("config reloaded")
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("config reload disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithComponent(logging.WithContext(ctx, a.log), "mcp")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A clean transport exit ends the server like a signal does.
		defer stop()
		return srv.Serve(ctx, server.Config{
			Transport: transport,
			Port:      port,
			Stdin:     os.Stdin,
			Stdout:    cmd.OutOrStdout(),
		})
	})

	g.Go(func() error {
		<-ctx.Done()
		releaseOnShutdown(a)
		return nil
	})

	return g.Wait()
}

// releaseOnShutdown freezes the permissions state and shows the cursor if a
// client disconnected while holding hides.
func releaseOnShutdown(a *app) {
	a.perms.StopAllChecks()
	if n := a.guard.ReleaseAll(); n > 0 {
		a.log.Info().Int("hides", n).Msg("released cursor hides left by clients")
	}
}
