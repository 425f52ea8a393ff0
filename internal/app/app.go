// Package app builds the run collaborators selected by the configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/flarebyte/buildnotifier/internal/config"
	"github.com/flarebyte/buildnotifier/internal/console"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/notifier"
	"github.com/flarebyte/buildnotifier/internal/notify"
	"github.com/flarebyte/buildnotifier/internal/progress"
	"github.com/flarebyte/buildnotifier/internal/storage"
)

// Deps is what New needs besides the configuration.
type Deps struct {
	Printer *console.Printer
	// DryRunOut receives console backend messages.
	DryRunOut io.Writer
	// Firebase overrides app construction; used by tests.
	Firebase func(ctx context.Context, cfg config.Config) (*firebase.App, error)
}

// New constructs a Notifier from cfg. The metadata resolver is left for the
// caller since it depends on command arguments.
func New(ctx context.Context, cfg config.Config, deps Deps) (*notifier.Notifier, error) {
	parser, err := NewParser(cfg.Progress)
	if err != nil {
		return nil, err
	}
	lazy := &lazyFirebase{cfg: cfg, build: deps.Firebase}
	uploader, err := NewUploader(ctx, cfg.Storage, lazy)
	if err != nil {
		// Artifacts then carry no remote key; the notification still goes out.
		logrus.WithField("backend", cfg.Storage.Backend).WithError(err).Warn("storage unavailable, uploads disabled")
		uploader = storage.None{}
	}
	sender, err := NewSender(ctx, cfg.Messaging, lazy, deps.DryRunOut)
	if err != nil {
		return nil, err
	}
	return &notifier.Notifier{
		Parser:    parser,
		Uploader:  uploader,
		Sender:    sender,
		Printer:   deps.Printer,
		KeyPrefix: cfg.Storage.Prefix,
		Summary:   true,
	}, nil
}

// NewParser returns the configured progress parser.
func NewParser(p config.Progress) (progress.Parser, error) {
	switch p.Parser {
	case config.ParserLua:
		return progress.NewLua(p.Inline, p.File, millis(p.TimeoutMs))
	default:
		return progress.Bracket{}, nil
	}
}

// NewUploader returns the configured storage backend.
func NewUploader(ctx context.Context, s config.Storage, fb firebaseSource) (storage.Uploader, error) {
	switch s.Backend {
	case config.BackendS3:
		return storage.NewS3(ctx, s.Bucket, s.Region)
	case config.BackendLocal:
		return storage.Local{Root: s.Dir}, nil
	case config.BackendNone:
		return storage.None{}, nil
	default:
		app, err := fb.app(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewFirebase(ctx, app)
	}
}

// NewSender returns the configured messaging backend.
func NewSender(ctx context.Context, m config.Messaging, fb firebaseSource, dryRun io.Writer) (notify.Sender, error) {
	if m.Backend == config.BackendConsole {
		return notify.Console{W: dryRun}, nil
	}
	app, err := fb.app(ctx)
	if err != nil {
		return nil, err
	}
	return notify.NewFCM(ctx, app)
}

// NewResolver returns the configured metadata resolver. fallback carries the
// labels given on the command line.
func NewResolver(md config.Metadata, dir string, fallback metadata.Info) metadata.Resolver {
	switch md.Resolver {
	case config.ResolverBuildVars:
		return metadata.BuildVars{
			Command:         md.Command,
			Dir:             dir,
			DeviceVariable:  md.DeviceVariable,
			VersionVariable: md.VersionVariable,
			Timeout:         millis(md.TimeoutMs),
			Fallback:        fallback,
		}
	case config.ResolverGit:
		return metadata.Git{Dir: dir, Fallback: fallback}
	default:
		return metadata.Static(fallback)
	}
}

// NewFirebaseApp initialises the Firebase app once per process from the
// messaging and storage settings.
func NewFirebaseApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	fc := &firebase.Config{ProjectID: cfg.Messaging.ProjectID}
	if cfg.Storage.Backend == config.BackendFirebase {
		fc.StorageBucket = cfg.Storage.Bucket
	}
	var opts []option.ClientOption
	if cfg.Messaging.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Messaging.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, fc, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: %w", err)
	}
	return app, nil
}

type firebaseSource interface {
	app(ctx context.Context) (*firebase.App, error)
}

// lazyFirebase creates the app on first use; offline backends never build it.
type lazyFirebase struct {
	cfg   config.Config
	build func(ctx context.Context, cfg config.Config) (*firebase.App, error)
	inst  *firebase.App
	err   error
	done  bool
}

func (l *lazyFirebase) app(ctx context.Context) (*firebase.App, error) {
	if l.done {
		return l.inst, l.err
	}
	build := l.build
	if build == nil {
		build = NewFirebaseApp
	}
	l.inst, l.err = build(ctx, l.cfg)
	l.done = true
	return l.inst, l.err
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
