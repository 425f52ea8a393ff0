package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultCaptureTimeout bounds build-variable lookups.
const DefaultCaptureTimeout = 15 * time.Second

const termGrace = 500 * time.Millisecond

// ErrTimeout is returned by Capture when the process outlives its deadline.
var ErrTimeout = errors.New("timed out")

// Capture runs argv in dir and returns its trimmed stdout. The process group is
// sent SIGTERM once timeout elapses, then SIGKILL after a short grace period.
// A timeout <= 0 uses DefaultCaptureTimeout.
func Capture(ctx context.Context, argv []string, dir string, timeout time.Duration) (string, error) {
	if len(argv) == 0 {
		return "", errEmptyCommand
	}
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.WaitDelay = termGrace
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return "", fmt.Errorf("program %s not found", argv[0])
		}
		return "", fmt.Errorf("program %s start failed: %w", argv[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return "", fmt.Errorf("%s exited with status %d", argv[0], exitErr.ExitCode())
			}
			return "", fmt.Errorf("program %s execution failed: %w", argv[0], err)
		}
		return strings.TrimSpace(out.String()), nil
	case <-ctx.Done():
		_ = stopProcess(cmd, done)
		return "", ctx.Err()
	case <-timer.C:
		_ = stopProcess(cmd, done)
		return "", fmt.Errorf("%s: %w after %s", argv[0], ErrTimeout, timeout)
	}
}

// stopProcess terminates cmd and waits for the Wait result on done.
func stopProcess(cmd *exec.Cmd, done <-chan error) error {
	terminate(cmd)
	grace := time.NewTimer(termGrace)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
		kill(cmd)
		return <-done
	}
}
