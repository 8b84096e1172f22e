// Package bootstrap decides at launch whether the app can run its full setup
// or has to ask the user for permissions first.
package bootstrap

import (
	"context"

	"github.com/mj1618/appgate/internal/logging"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/mj1618/appgate/internal/settings"
	"github.com/rs/zerolog"
)

// StateSource is the part of the permissions aggregator the controller reads.
type StateSource interface {
	State() permissions.State
	Subscribe(fn func(permissions.State)) (unsubscribe func())
}

// FlagStore persists launch flags.
type FlagStore interface {
	Bool(key string) bool
	SetBool(key string, value bool) error
}

// Decision is what the app should do for a given permissions state.
type Decision struct {
	State             permissions.State `yaml:"state"               json:"state"`
	HasPermissions    bool              `yaml:"has_permissions"     json:"has_permissions"`
	ShowPermissionsUI bool              `yaml:"show_permissions_ui" json:"show_permissions_ui"`
	FirstLaunch       bool              `yaml:"first_launch"        json:"first_launch"`
}

// Controller turns permission states into launch decisions.
type Controller struct {
	perms StateSource
	flags FlagStore
	log   zerolog.Logger

	firstLaunch bool
}

// New creates a controller. The first-launch flag is read once, here.
func New(perms StateSource, flags FlagStore, log zerolog.Logger) *Controller {
	return &Controller{
		perms:       perms,
		flags:       flags,
		log:         logging.Component(log, "bootstrap"),
		firstLaunch: !flags.Bool(settings.KeyHasCompletedFirstLaunch),
	}
}

// Decide maps a state to a decision.
func (c *Controller) Decide(state permissions.State) Decision {
	return Decision{
		State:             state,
		HasPermissions:    state.Ready(),
		ShowPermissionsUI: c.firstLaunch || state == permissions.StateMissing,
		FirstLaunch:       c.firstLaunch,
	}
}

// Launch reads the current state once and returns the startup decision.
func (c *Controller) Launch() Decision {
	d := c.Decide(c.perms.State())
	switch d.State {
	case permissions.StateHasAll:
		c.log.Debug().Msg("Passed all permissions checks")
	case permissions.StateHasRequired:
		c.log.Debug().Msg("Passed required permissions checks")
	default:
		c.log.Debug().Msg("Failed required permissions checks")
	}
	return d
}

// Watch calls fn with a fresh decision after every state change.
func (c *Controller) Watch(fn func(Decision)) (unsubscribe func()) {
	return c.perms.Subscribe(func(s permissions.State) {
		fn(c.Decide(s))
	})
}

// WaitReady blocks until the required permissions are granted and returns
// that decision. It subscribes before reading the current state, so a change
// landing in between is not lost.
func (c *Controller) WaitReady(ctx context.Context) (Decision, error) {
	ready := make(chan Decision, 1)
	offer := func(d Decision) {
		if !d.HasPermissions {
			return
		}
		select {
		case ready <- d:
		default:
		}
	}

	unsubscribe := c.Watch(offer)
	defer unsubscribe()
	offer(c.Decide(c.perms.State()))

	select {
	case d := <-ready:
		c.log.Debug().Stringer("state", d.State).Msg("Required permissions granted")
		return d, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}

// CompleteFirstLaunch records that the first launch finished.
func (c *Controller) CompleteFirstLaunch() error {
	if err := c.flags.SetBool(settings.KeyHasCompletedFirstLaunch, true); err != nil {
		c.log.Error().Err(err).Msg("failed to record first launch")
		return err
	}
	c.firstLaunch = false
	return nil
}
