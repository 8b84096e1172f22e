//go:build darwin && cgo

package darwin

import "github.com/mj1618/appgate/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Permissions: NewPermissionChecker(),
			Cursor:      NewCursorController(),
			Mouse:       NewMouse(),
			Settings:    NewSettingsOpener(),
		}, nil
	}
}
