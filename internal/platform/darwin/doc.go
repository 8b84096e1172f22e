//go:build darwin

// Package darwin provides macOS platform support using the Accessibility and
// CoreGraphics APIs. Permission and cursor backends require CGo.
// When CGo is disabled, no provider is registered.
package darwin
