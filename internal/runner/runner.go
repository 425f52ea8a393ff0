// Package runner executes build scripts and captures their output.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExitStartFailure is the exit code reported when the process could not be
// started or its output could not be read.
const ExitStartFailure = -1

var errEmptyCommand = errors.New("empty command")

// Command is a process invocation.
type Command struct {
	Argv []string
	Dir  string
}

// RunResult is the outcome of one monitored execution.
type RunResult struct {
	ExitCode  int
	Output    string
	StartTime time.Time
	Duration  time.Duration
	// Err explains an ExitStartFailure. It is informational only.
	Err error
}

// Succeeded reports whether the process exited with status zero.
func (r RunResult) Succeeded() bool { return r.ExitCode == 0 }

// StartMillis returns the start time as Unix epoch milliseconds.
func (r RunResult) StartMillis() int64 { return r.StartTime.UnixMilli() }

// DurationMillis returns the wall clock duration in milliseconds.
func (r RunResult) DurationMillis() int64 { return r.Duration.Milliseconds() }

// Lines splits Output back into the echoed lines.
func (r RunResult) Lines() []string {
	if r.Output == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(r.Output, "\n"), "\n")
}

// Run starts c, echoes every line of its combined stdout/stderr to echo while
// buffering it, and waits for it to exit. It never returns an error: start and
// read failures are reported as ExitStartFailure with whatever output was read.
func Run(ctx context.Context, c Command, echo io.Writer) RunResult {
	if echo == nil {
		echo = io.Discard
	}
	res := RunResult{ExitCode: ExitStartFailure, StartTime: time.Now()}
	var buf strings.Builder
	finish := func() RunResult {
		res.Duration = time.Since(res.StartTime)
		res.Output = buf.String()
		return res
	}

	if len(c.Argv) == 0 {
		res.Err = errEmptyCommand
		return finish()
	}
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	// Cancellation stops the whole group so no grandchild keeps the pipe open.
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		kill(cmd)
		return nil
	}
	cmd.WaitDelay = termGrace
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		res.Err = err
		return finish()
	}
	cmd.Stderr = cmd.Stdout // merge stderr into stdout

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			res.Err = fmt.Errorf("program %s not found", c.Argv[0])
		} else {
			res.Err = fmt.Errorf("program %s start failed: %w", c.Argv[0], err)
		}
		return finish()
	}

	readErr := streamLines(stdout, echo, &buf)
	waitErr := cmd.Wait()

	switch {
	case readErr != nil:
		res.Err = fmt.Errorf("reading output: %w", readErr)
	case waitErr == nil:
		res.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Err = waitErr
		}
	}
	return finish()
}

// streamLines copies r line by line to echo and buf, restoring a "\n"
// terminator on every line so both sides see the same line sequence.
func streamLines(r io.Reader, echo io.Writer, buf *strings.Builder) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			_, _ = fmt.Fprintln(echo, line)
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Drain so the child does not block on a full pipe.
			_, _ = io.Copy(io.Discard, br)
			return err
		}
	}
}

// RunScript runs script from dir through the host platform's shell. A missing
// script yields ExitStartFailure without spawning anything.
func RunScript(ctx context.Context, script, dir string, echo io.Writer) RunResult {
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, script)
	}
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is a directory", script)
		}
		now := time.Now()
		return RunResult{ExitCode: ExitStartFailure, StartTime: now, Err: fmt.Errorf("script %s: %w", script, err)}
	}
	return Run(ctx, Command{Argv: ShellCommand(hostOS, script), Dir: dir}, echo)
}
