// Package metadata resolves the device label and build version reported in
// a notification.
package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flarebyte/buildnotifier/internal/runner"
	"github.com/sirupsen/logrus"
)

// Info is the build identity of one run.
type Info struct {
	Device       string
	BuildVersion string
}

// Resolver produces Info for a run.
type Resolver interface {
	Resolve(ctx context.Context) (Info, error)
}

// Static returns fixed values, typically from command line arguments.
type Static Info

// Resolve implements Resolver.
func (s Static) Resolve(context.Context) (Info, error) { return Info(s), nil }

// CaptureFunc runs a command with a bounded wait and returns its stdout.
type CaptureFunc func(ctx context.Context, argv []string, dir string, timeout time.Duration) (string, error)

// BuildVars reads the device and version from build system variables by
// running Command once per variable, with "{name}" replaced by the variable.
// A lookup that fails or times out yields "" rather than an error.
type BuildVars struct {
	Command         []string
	Dir             string
	DeviceVariable  string
	VersionVariable string
	Timeout         time.Duration
	// Fallback fills fields the build system left empty.
	Fallback Info
	Capture  CaptureFunc
}

// Resolve implements Resolver.
func (b BuildVars) Resolve(ctx context.Context) (Info, error) {
	info := Info{
		Device:       b.lookup(ctx, b.DeviceVariable),
		BuildVersion: b.lookup(ctx, b.VersionVariable),
	}
	return fill(info, b.Fallback), nil
}

func (b BuildVars) lookup(ctx context.Context, name string) string {
	if name == "" || len(b.Command) == 0 {
		return ""
	}
	capture := b.Capture
	if capture == nil {
		capture = runner.Capture
	}
	argv := RenderCommand(b.Command, name)
	out, err := capture(ctx, argv, b.Dir, b.Timeout)
	if err != nil {
		logrus.WithField("variable", name).WithError(err).Warn("build variable lookup failed")
		return ""
	}
	// Print-variable helpers may emit banners; the value is the last line.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// RenderCommand substitutes the variable name into every "{name}" token.
func RenderCommand(tmpl []string, name string) []string {
	out := make([]string, len(tmpl))
	for i, a := range tmpl {
		out[i] = strings.ReplaceAll(a, "{name}", name)
	}
	return out
}

func fill(info, fallback Info) Info {
	if info.Device == "" {
		info.Device = fallback.Device
	}
	if info.BuildVersion == "" {
		info.BuildVersion = fallback.BuildVersion
	}
	return info
}

func errorf(format string, a ...any) error {
	return fmt.Errorf("metadata: "+format, a...)
}
