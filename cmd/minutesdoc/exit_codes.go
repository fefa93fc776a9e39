package main

import (
	"errors"

	"github.com/dgallion1/minutesdoc/internal/capability"
	"github.com/dgallion1/minutesdoc/internal/config"
	"github.com/dgallion1/minutesdoc/internal/render"
	"github.com/dgallion1/minutesdoc/internal/source"
)

// Exit codes for the minutesdoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error, including remote service failures
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Source file not found or unreadable
	ExitRender  = 4 // No local author available, or the artifact could not be written
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, render.ErrMissingDependency) ||
		errors.Is(err, render.ErrRender) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, source.ErrFileNotFound) ||
		errors.Is(err, source.ErrRead) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrConfigRead) ||
		errors.Is(err, capability.ErrUnknownSet) ||
		errors.Is(err, capability.ErrUnknownCapability) {
		return ExitUsage
	}

	return ExitGeneral
}
