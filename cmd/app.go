package cmd

import (
	"errors"
	"fmt"

	"github.com/mj1618/appgate/internal/config"
	"github.com/mj1618/appgate/internal/cursor"
	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/mainqueue"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/mj1618/appgate/internal/platform"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app wires the core components for one command invocation.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	provider *platform.Provider
	queue    *mainqueue.Queue
	perms    *permissions.Permissions
	guard    *cursor.Guard
	mouse    *cursor.Mouse
}

// newApp loads config, builds the logger and the platform provider. An
// unsupported platform is not fatal: every permission reads as not granted.
// Each adjust func may override loaded config values before anything is built.
func newApp(cmd *cobra.Command, adjust ...func(*config.Config)) (*app, error) {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: logging.DefaultConfig().TimeFormat,
		Out:        cmd.ErrOrStderr(),
		Global:     true,
	})

	provider, err := platform.NewProvider()
	if err != nil {
		if !errors.Is(err, platform.ErrUnsupported) {
			return nil, fmt.Errorf("platform: %w", err)
		}
		log.Warn().Err(err).Msg("running without platform support")
		provider = &platform.Provider{}
	}

	return newAppWith(cfg, log, provider), nil
}

// newAppWith builds an app from already resolved parts.
func newAppWith(cfg *config.Config, log zerolog.Logger, provider *platform.Provider) *app {
	q := mainqueue.New()
	a := &app{
		cfg:      cfg,
		log:      log,
		provider: provider,
		queue:    q,
		perms: permissions.New(
			permissions.WithQueue(q),
			permissions.WithChecker(provider.Permissions),
			permissions.WithLogger(log),
			permissions.WithPollInterval(cfg.Permissions.PollInterval),
		),
		guard: cursor.NewGuard(provider.Cursor, log),
		mouse: cursor.NewMouse(provider.Mouse, log),
	}
	cursor.SetDefault(a.guard)
	return a
}

// Close stops all checks and drains the main queue.
func (a *app) Close() {
	a.perms.Close()
	a.queue.Close()
}
