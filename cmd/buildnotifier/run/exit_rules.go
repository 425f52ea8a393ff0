package run

import "github.com/flarebyte/buildnotifier/internal/notifier"

const (
	exitCodeSuccess     = notifier.ExitSent
	exitCodeAborted     = notifier.ExitAborted
	exitCodeBuildFailed = notifier.ExitBuildFailed
	exitCodeNotSent     = notifier.ExitNotSent
)

func evaluateRunExit(out notifier.Outcome) error {
	switch out.ExitCode() {
	case exitCodeSuccess:
		return nil
	case exitCodeAborted:
		return runExitError{code: exitCodeAborted, msg: "aborted: no device token"}
	case exitCodeNotSent:
		return runExitError{code: exitCodeNotSent, msg: "notification not delivered"}
	default:
		return runExitError{code: exitCodeBuildFailed, msg: "build failed"}
	}
}

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }
