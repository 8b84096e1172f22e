package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mj1618/appgate/internal/config"
	"github.com/mj1618/appgate/internal/permissions"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream permission state changes as JSONL",
	Long: `Poll every tracked permission and emit one JSON object per change.

The first line is a snapshot of the current state. After that a "state" event
is written each time the aggregate state changes and a "permission" event each
time a single permission flips. Output is always JSONL regardless of --format.

Use Ctrl+C, --duration or --until to stop watching.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Int("duration", 0, "Max seconds to watch (0 = until Ctrl+C)")
	watchCmd.Flags().Int("interval", 0, "Polling interval in milliseconds (0 = use config)")
	watchCmd.Flags().String("until", "", "Stop once the state reaches this value: missing, hasRequired, hasAll")
}

// watchEvent is one JSONL line.
type watchEvent struct {
	Type       string             `json:"type"`
	TS         int64              `json:"ts"`
	State      *permissions.State `json:"state,omitempty"`
	Permission permissions.Kind   `json:"permission,omitempty"`
	Granted    *bool              `json:"granted,omitempty"`
	Elapsed    string             `json:"elapsed,omitempty"`
	Events     int                `json:"events,omitempty"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	durationSec, _ := cmd.Flags().GetInt("duration")
	intervalMs, _ := cmd.Flags().GetInt("interval")
	untilName, _ := cmd.Flags().GetString("until")

	var until *permissions.State
	if untilName != "" {
		target, err := permissions.ParseState(untilName)
		if err != nil {
			return err
		}
		until = &target
	}

	a, err := newApp(cmd, func(cfg *config.Config) {
		if intervalMs > 0 {
			cfg.Permissions.PollInterval = time.Duration(intervalMs) * time.Millisecond
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)

	var (
		mu         sync.Mutex
		eventCount int
	)
	emit := func(ev watchEvent) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Type != "snapshot" && ev.Type != "done" {
			eventCount++
		}
		if err := enc.Encode(ev); err != nil {
			a.log.Error().Err(err).Msg("failed to write event")
		}
	}

	start := time.Now()
	ready := make(chan struct{})
	var readyOnce sync.Once

	// Everything below runs on the main queue, so the snapshot is taken
	// before any change can be delivered.
	a.queue.Sync(func() {
		state := a.perms.State()
		emit(watchEvent{Type: "snapshot", TS: time.Now().Unix(), State: &state})
		if until != nil && state == *until {
			readyOnce.Do(func() { close(ready) })
		}

		for _, p := range a.perms.AllPermissions() {
			kind := p.Kind()
			p.Subscribe(func(granted bool) {
				g := granted
				emit(watchEvent{Type: "permission", TS: time.Now().Unix(), Permission: kind, Granted: &g})
			})
		}
		a.perms.Subscribe(func(s permissions.State) {
			st := s
			emit(watchEvent{Type: "state", TS: time.Now().Unix(), State: &st})
			if until != nil && s == *until {
				readyOnce.Do(func() { close(ready) })
			}
		})
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var timeout <-chan time.Time
	if durationSec > 0 {
		timeout = time.After(time.Duration(durationSec) * time.Second)
	}

	select {
	case <-sig:
	case <-timeout:
	case <-ready:
	case <-cmd.Context().Done():
	}

	a.perms.StopAllChecks()
	a.perms.Flush()

	mu.Lock()
	count := eventCount
	mu.Unlock()
	emit(watchEvent{
		Type:    "done",
		TS:      time.Now().Unix(),
		Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		Events:  count,
	})
	return nil
}
