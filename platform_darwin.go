//go:build darwin

package main

// Registers the macOS provider.
import _ "github.com/mj1618/appgate/internal/platform/darwin"
