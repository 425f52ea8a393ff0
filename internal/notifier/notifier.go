// Package notifier sequences one build run: execute the script, persist its
// logs, upload them and notify the target device.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flarebyte/buildnotifier/internal/artifact"
	"github.com/flarebyte/buildnotifier/internal/console"
	"github.com/flarebyte/buildnotifier/internal/excerpt"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/notify"
	"github.com/flarebyte/buildnotifier/internal/progress"
	"github.com/flarebyte/buildnotifier/internal/runner"
	"github.com/flarebyte/buildnotifier/internal/storage"
)

// DefaultLabel replaces a missing device or build version.
const DefaultLabel = "Default"

// ErrNoToken aborts a run whose token file is missing or blank.
var ErrNoToken = errors.New("no device token")

// ScriptRunner executes a build script and captures its output.
type ScriptRunner func(ctx context.Context, script, dir string, echo io.Writer) runner.RunResult

// Notifier holds the collaborators of a run. Zero-valued optional fields fall
// back to the bracket progress parser, the host shell runner, no uploads and
// the wall clock.
type Notifier struct {
	Resolver metadata.Resolver
	Parser   progress.Parser
	Uploader storage.Uploader
	Sender   notify.Sender
	Printer  *console.Printer
	// KeyPrefix is prepended to the device token in remote keys.
	KeyPrefix string
	// Summary enables the YAML run summary next to the logs.
	Summary   bool
	RunScript ScriptRunner
	Now       func() time.Time
}

// Request describes one build run.
type Request struct {
	Script    string
	Dir       string
	TokenFile string
	LogsDir   string
	Keywords  []string
	Radius    int
}

type run struct {
	n   *Notifier
	req Request
	log *logrus.Entry
	out Outcome
}

// Run executes req and always returns an Outcome. The error is non-nil only
// when the build log could not be written.
func (n *Notifier) Run(ctx context.Context, req Request) (Outcome, error) {
	r := &run{n: n, req: req}
	r.out.RunID = uuid.NewString()
	r.out.enter(StateIdle)
	r.log = logrus.WithField("run", r.out.RunID)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"resolve-metadata", r.resolveMetadata},
		{"run-script", r.runScript},
		{"save-build-log", r.saveBuildLog},
		{"save-error-log", r.saveErrorLog},
	}
	for _, s := range steps {
		r.log.WithField("step", s.name).Debug("step start")
		if err := s.fn(ctx); err != nil {
			return r.out, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	token, err := readToken(req.TokenFile)
	if err != nil {
		r.log.WithError(err).Debug("token file unreadable")
	}
	if token == "" {
		n.printer().Error("No Device Token file (%s) found, exiting", req.TokenFile)
		r.out.AbortErr = ErrNoToken
		r.out.enter(StateAborted)
		r.writeSummary()
		return r.out, nil
	}

	r.upload(ctx, token)
	r.deriveProgress()
	r.send(ctx, token)
	r.writeSummary()
	return r.out, nil
}

func (r *run) resolveMetadata(ctx context.Context) error {
	p := r.n.printer()
	var info metadata.Info
	if r.n.Resolver != nil {
		got, err := r.n.Resolver.Resolve(ctx)
		if err != nil {
			r.log.WithError(err).Warn("metadata resolver failed")
		}
		info = got
	}
	if info.Device == "" || info.Device == DefaultLabel {
		info.Device = DefaultLabel
		p.Info("No Device specified")
	}
	if info.BuildVersion == "" || info.BuildVersion == DefaultLabel {
		info.BuildVersion = DefaultLabel
		p.Warn("No Build Version specified")
	}
	r.out.Info = info
	p.Info("Initialising...")
	return nil
}

func (r *run) runScript(ctx context.Context) error {
	p := r.n.printer()
	p.Info("Running %s", filepath.Base(r.req.Script))
	r.out.enter(StateRunning)
	exec := r.n.RunScript
	if exec == nil {
		exec = runner.RunScript
	}
	res := exec(ctx, r.req.Script, r.req.Dir, p.Writer())
	r.out.Result = res
	r.out.BuildOK = res.Succeeded()
	if res.Err != nil {
		r.log.WithError(res.Err).Warn("build script did not run")
	}
	r.log.WithFields(logrus.Fields{
		"exitCode":   res.ExitCode,
		"durationMs": res.DurationMillis(),
	}).Debug("build finished")
	if r.out.BuildOK {
		r.out.enter(StateSucceeded)
	} else {
		r.out.enter(StateFailed)
	}
	return nil
}

func (r *run) saveBuildLog(context.Context) error {
	p := r.n.printer()
	p.Info("Saving Build Logs...")
	l, err := artifact.Write(r.req.LogsDir, artifact.BuildLogName(r.startTime()), r.out.Result.Output)
	if err != nil {
		return err
	}
	r.out.BuildLog = l
	p.Success("Build Log File saved as %s", l.Name())
	return nil
}

func (r *run) saveErrorLog(context.Context) error {
	if r.out.BuildOK {
		return nil
	}
	p := r.n.printer()
	p.Error("Build Failed")
	keywords := r.req.Keywords
	if len(keywords) == 0 {
		keywords = excerpt.DefaultKeywords
	}
	w, ok := excerpt.Excerpt(r.out.Result.Lines(), keywords, r.req.Radius)
	if !ok {
		r.log.Debug("no failure keyword matched")
		return nil
	}
	l, err := artifact.Write(r.req.LogsDir, artifact.ErrorLogName(r.startTime()), w.Text())
	if err != nil {
		// Optional artifact.
		r.log.WithError(err).Warn("error log not written")
		return nil
	}
	r.out.ErrorLog = &l
	p.Success("Error Log File saved as %s (keyword %q, line %d)", l.Name(), w.Keyword, w.Anchor+1)
	return nil
}

func (r *run) upload(ctx context.Context, token string) {
	p := r.n.printer()
	prefix := remotePrefix(r.n.KeyPrefix, token)
	p.Info("Uploading Log...")
	r.attempt(ctx, prefix, r.out.BuildLog.Path)
	if r.out.ErrorLog != nil {
		p.Info("Uploading Error Log...")
		r.attempt(ctx, prefix, r.out.ErrorLog.Path)
	}
}

func (r *run) attempt(ctx context.Context, prefix, localPath string) {
	res := storage.Attempt(ctx, r.n.Uploader, prefix, localPath)
	if res.Err != nil && !errors.Is(res.Err, storage.ErrSkipped) {
		r.log.WithField("file", filepath.Base(localPath)).WithError(res.Err).Warn("upload failed")
	}
	r.out.Uploads = append(r.out.Uploads, res)
}

func (r *run) deriveProgress() {
	parser := r.n.Parser
	if parser == nil {
		parser = progress.Bracket{}
	}
	marker, err := parser.Parse(r.out.Result.Lines())
	if err != nil {
		r.log.WithError(err).Warn("progress parser failed")
		marker = progress.Unknown
	}
	r.out.Progress = marker
}

func (r *run) send(ctx context.Context, token string) {
	payload := notify.NewPayload().
		Set(notify.KeyDevice, r.out.Info.Device).
		Set(notify.KeyTime, strconv.FormatInt(r.out.Result.StartMillis(), 10)).
		Set(notify.KeyStatus, strconv.FormatBool(r.out.BuildOK)).
		SetOptional(notify.KeyProgress, r.out.Progress).
		Set(notify.KeyBuildVersion, r.out.Info.BuildVersion).
		Set(notify.KeyTimeTaken, strconv.FormatInt(r.out.Result.DurationMillis(), 10)).
		SetOptional(notify.KeyLogFile, r.out.RemoteKey(r.out.BuildLog.Path))
	if r.out.ErrorLog != nil {
		payload.SetOptional(notify.KeyErrorLogFile, r.out.RemoteKey(r.out.ErrorLog.Path))
	}
	deliver(ctx, r.n, &r.out, r.log, token, payload)
}

// deliver sends payload and records the delivery on out.
func deliver(ctx context.Context, n *Notifier, out *Outcome, log *logrus.Entry, token string, payload *notify.Payload) {
	p := n.printer()
	out.Payload = payload.Map()
	out.enter(StateNotifying)
	p.Info("Notifying target Device")
	if n.Sender != nil {
		id, err := n.Sender.Send(ctx, token, out.Payload)
		out.DeliveryID, out.SendErr = id, err
	} else {
		out.SendErr = errors.New("no messaging backend")
	}
	if out.Delivered() {
		p.Success("Notification sent")
		log.WithField("delivery", out.DeliveryID).Debug("notification accepted")
	} else {
		p.Error("Failed to notify target Device")
		if out.SendErr != nil {
			log.WithError(out.SendErr).Warn("notification not delivered")
		}
	}
	out.enter(StateDone)
}

func (r *run) startTime() time.Time {
	if !r.out.Result.StartTime.IsZero() {
		return r.out.Result.StartTime
	}
	if r.n.Now != nil {
		return r.n.Now()
	}
	return time.Now()
}

func (r *run) writeSummary() {
	if !r.n.Summary {
		return
	}
	uploads := make([]any, 0, len(r.out.Uploads))
	for _, u := range r.out.Uploads {
		entry := map[string]any{"file": filepath.Base(u.LocalPath), "remoteKey": nil}
		if u.OK() {
			entry["remoteKey"] = u.RemoteKey
		}
		uploads = append(uploads, entry)
	}
	s := artifact.Summary{
		"run":          r.out.RunID,
		"state":        string(r.out.State()),
		"device":       r.out.Info.Device,
		"buildVersion": r.out.Info.BuildVersion,
		"status":       r.out.BuildOK,
		"exitCode":     r.out.Result.ExitCode,
		"startTime":    r.out.Result.StartMillis(),
		"timeTaken":    r.out.Result.DurationMillis(),
		"buildLog":     r.out.BuildLog.Name(),
		"errorLog":     nil,
		"uploads":      uploads,
		"progress":     r.out.Progress,
		"delivery":     r.out.DeliveryID,
	}
	if r.out.ErrorLog != nil {
		s["errorLog"] = r.out.ErrorLog.Name()
	}
	p := filepath.Join(r.req.LogsDir, artifact.SummaryName(r.startTime()))
	if err := artifact.WriteSummary(p, s); err != nil {
		r.log.WithError(err).Warn("run summary not written")
	}
}

func (n *Notifier) printer() *console.Printer {
	if n.Printer == nil {
		n.Printer = console.NewPrinter(io.Discard, true)
	}
	return n.Printer
}

// readToken returns the trimmed token file content. A missing file reads as
// an empty token.
func readToken(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func remotePrefix(keyPrefix, token string) string {
	keyPrefix = strings.Trim(keyPrefix, "/")
	if keyPrefix == "" {
		return token
	}
	return path.Join(keyPrefix, token)
}
