//go:build windows

package runner

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// Windows has no SIGTERM delivery to console children; both steps kill.
func terminate(cmd *exec.Cmd) { kill(cmd) }

func kill(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
