package notifier

import (
	"github.com/flarebyte/buildnotifier/internal/artifact"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/runner"
	"github.com/flarebyte/buildnotifier/internal/storage"
)

// State is a step of the run lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateNotifying State = "notifying"
	StateDone      State = "done"
	StateAborted   State = "aborted"
)

// Process exit codes derived from an Outcome.
const (
	ExitSent        = 0
	ExitAborted     = 1
	ExitBuildFailed = 2
	ExitNotSent     = 3
)

// Outcome records everything one run produced.
type Outcome struct {
	RunID string
	// States lists every state entered, starting with StateIdle.
	States []State
	Info   metadata.Info
	Result runner.RunResult
	// BuildOK is the build status reported in the payload.
	BuildOK  bool
	BuildLog artifact.Log
	// ErrorLog is nil when the build succeeded or no keyword matched.
	ErrorLog   *artifact.Log
	Uploads    []storage.Result
	Progress   string
	Payload    map[string]string
	DeliveryID string
	SendErr    error
	// AbortErr is set when the run stopped before notifying.
	AbortErr error
}

// State returns the last state entered.
func (o Outcome) State() State {
	if len(o.States) == 0 {
		return StateIdle
	}
	return o.States[len(o.States)-1]
}

// Delivered reports whether the messaging backend accepted the notification.
func (o Outcome) Delivered() bool { return o.DeliveryID != "" }

// RemoteKey returns the stored key for localPath, or "" when its upload did
// not succeed.
func (o Outcome) RemoteKey(localPath string) string {
	for _, u := range o.Uploads {
		if u.LocalPath == localPath && u.OK() {
			return u.RemoteKey
		}
	}
	return ""
}

// ExitCode maps the outcome onto the process exit status.
func (o Outcome) ExitCode() int {
	switch {
	case o.State() == StateAborted:
		return ExitAborted
	case !o.Delivered():
		return ExitNotSent
	case !o.BuildOK:
		return ExitBuildFailed
	default:
		return ExitSent
	}
}

func (o *Outcome) enter(s State) { o.States = append(o.States, s) }
