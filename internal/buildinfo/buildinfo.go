// Package buildinfo exposes version metadata for the CLI. Values are set at
// build time via -ldflags; the cli package values are honored as a fallback
// for release scripts that only set those.
package buildinfo

import (
	"strings"

	"github.com/flarebyte/buildnotifier/cli"
)

var (
	// Version is the semantic version or custom string.
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time (optional).
	Date = ""
	// BuiltBy is an optional builder identifier.
	BuiltBy = ""
)

// Summary returns a concise single-line version string.
func Summary() string {
	v := Version
	if v == "" {
		v = cli.Version
	}
	if v == "" {
		v = "dev"
	}

	d := Date
	if d == "" {
		d = cli.Date
	}

	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if d != "" {
		parts = append(parts, "date="+d)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
