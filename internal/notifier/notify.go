package notifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flarebyte/buildnotifier/internal/artifact"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/notify"
	"github.com/flarebyte/buildnotifier/internal/storage"
)

// NotifyRequest reports a build that an external caller already ran.
type NotifyRequest struct {
	Token        string
	Device       string
	Time         string
	Status       string
	TimeTaken    string
	LogFile      string
	Step         string
	BuildVersion string
}

// Validate checks the numeric and boolean fields.
func (r NotifyRequest) Validate() error {
	if _, err := strconv.ParseInt(r.Time, 10, 64); err != nil {
		return fmt.Errorf("invalid time: %q (expected epoch milliseconds)", r.Time)
	}
	if _, err := strconv.ParseInt(r.TimeTaken, 10, 64); err != nil {
		return fmt.Errorf("invalid timeTaken: %q (expected milliseconds)", r.TimeTaken)
	}
	if _, err := strconv.ParseBool(r.Status); err != nil {
		return fmt.Errorf("invalid status: %q (expected true or false)", r.Status)
	}
	return nil
}

// Notify uploads the optional log file and sends the notification for req.
// Invalid requests return an error before anything is uploaded.
func (n *Notifier) Notify(ctx context.Context, req NotifyRequest) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	out.enter(StateIdle)
	if err := req.Validate(); err != nil {
		return out, err
	}
	log := logrus.WithField("run", out.RunID)
	ok, _ := strconv.ParseBool(req.Status)
	out.BuildOK = ok
	out.Info = metadata.Info{Device: req.Device, BuildVersion: req.BuildVersion}
	out.Progress = req.Step
	if ok {
		out.enter(StateSucceeded)
	} else {
		out.enter(StateFailed)
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		n.printer().Error("No Device Token given, exiting")
		out.AbortErr = ErrNoToken
		out.enter(StateAborted)
		return out, nil
	}

	var logKey string
	if req.LogFile != "" {
		if st, err := os.Stat(req.LogFile); err == nil && !st.IsDir() {
			out.BuildLog = artifact.Log{Path: req.LogFile, CreatedAt: st.ModTime()}
			n.printer().Info("Uploading Log...")
			res := storage.Attempt(ctx, n.Uploader, remotePrefix(n.KeyPrefix, token), req.LogFile)
			if res.Err != nil && !errors.Is(res.Err, storage.ErrSkipped) {
				log.WithError(res.Err).Warn("upload failed")
			}
			out.Uploads = append(out.Uploads, res)
			if res.OK() {
				logKey = res.RemoteKey
			}
		} else {
			log.WithField("file", req.LogFile).Warn("log file not found, sending without it")
		}
	}

	payload := notify.NewPayload().
		Set(notify.KeyDevice, req.Device).
		Set(notify.KeyTime, req.Time).
		Set(notify.KeyStatus, strconv.FormatBool(ok)).
		SetOptional(notify.KeyProgress, req.Step).
		SetOptional(notify.KeyBuildVersion, req.BuildVersion).
		Set(notify.KeyTimeTaken, req.TimeTaken).
		SetOptional(notify.KeyLogFile, logKey)
	deliver(ctx, n, &out, log, token, payload)
	return out, nil
}
