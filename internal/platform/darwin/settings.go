//go:build darwin && cgo

package darwin

import (
	"fmt"
	"os/exec"
	"strings"
)

// SettingsOpener implements platform.SettingsOpener using open(1).
type SettingsOpener struct{}

// NewSettingsOpener returns a new SettingsOpener.
func NewSettingsOpener() *SettingsOpener {
	return &SettingsOpener{}
}

// OpenSettings opens a x-apple.systempreferences URL.
func (SettingsOpener) OpenSettings(url string) error {
	if !strings.HasPrefix(url, "x-apple.systempreferences:") {
		return fmt.Errorf("not a System Settings URL: %q", url)
	}
	if err := exec.Command("open", url).Run(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
