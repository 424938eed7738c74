// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     version
// Description: Version and build metadata for the CLI and services
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for the props components
const (
	// Language version of the accepted grammar
	Language = "0.3.0"

	// Component versions
	CLI     = "0.3.0"
	Service = "0.3.0"
	REPL    = "0.3.0"
)

// Build metadata, set with -ldflags "-X ...version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "cli":
		return CLI
	case "service":
		return Service
	case "repl":
		return REPL
	default:
		return Language
	}
}

// Info returns build metadata as key/value pairs
func Info() map[string]string {
	return map[string]string{
		"language":   Language,
		"cli":        CLI,
		"service":    Service,
		"commit":     Commit,
		"build_date": BuildDate,
		"go":         runtime.Version(),
	}
}

// String returns a one-line version banner
func String() string {
	return fmt.Sprintf("props %s (language %s, commit %s, %s)", CLI, Language, Commit, runtime.Version())
}
