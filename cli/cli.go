// Package cli holds release metadata injected by external build scripts, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/buildnotifier/cli.Version=1.2.3' -X 'github.com/flarebyte/buildnotifier/cli.Date=2026-10-17'"
package cli

var (
	Version string
	Date    string
)
