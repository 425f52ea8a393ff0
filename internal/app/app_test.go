package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	firebase "firebase.google.com/go/v4"

	"github.com/flarebyte/buildnotifier/internal/config"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/notify"
	"github.com/flarebyte/buildnotifier/internal/progress"
	"github.com/flarebyte/buildnotifier/internal/storage"
)

func offlineConfig(t *testing.T) config.Config {
	cfg := config.Defaults()
	cfg.Storage = config.Storage{Backend: config.BackendLocal, Dir: t.TempDir(), Prefix: "ci"}
	cfg.Messaging = config.Messaging{Backend: config.BackendConsole}
	return cfg
}

func TestNew_OfflineBackendsNeedNoFirebase(t *testing.T) {
	var dry bytes.Buffer
	called := false
	n, err := New(context.Background(), offlineConfig(t), Deps{
		DryRunOut: &dry,
		Firebase: func(context.Context, config.Config) (*firebase.App, error) {
			called = true
			return nil, errors.New("unexpected")
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if called {
		t.Fatalf("firebase app must not be built for offline backends")
	}
	if _, ok := n.Uploader.(storage.Local); !ok {
		t.Fatalf("unexpected uploader %T", n.Uploader)
	}
	if _, ok := n.Sender.(notify.Console); !ok {
		t.Fatalf("unexpected sender %T", n.Sender)
	}
	if _, ok := n.Parser.(progress.Bracket); !ok || n.KeyPrefix != "ci" {
		t.Fatalf("unexpected notifier: %+v", n)
	}
}

func TestNew_FirebaseFailureIsReportedOnce(t *testing.T) {
	cfg := config.Defaults()
	calls := 0
	_, err := New(context.Background(), cfg, Deps{
		Firebase: func(context.Context, config.Config) (*firebase.App, error) {
			calls++
			return nil, errors.New("no credentials")
		},
	})
	if err == nil || err.Error() != "no credentials" {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one build attempt, got %d", calls)
	}
}

func TestNewParser_Lua(t *testing.T) {
	p, err := NewParser(config.Progress{Parser: config.ParserLua, Inline: "return 'x'", TimeoutMs: 500})
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	if _, ok := p.(*progress.Lua); !ok {
		t.Fatalf("unexpected parser %T", p)
	}
	if _, err := NewParser(config.Progress{Parser: config.ParserLua}); err == nil {
		t.Fatalf("empty lua parser must fail")
	}
}

func TestNewResolver(t *testing.T) {
	fb := metadata.Info{Device: "pixel", BuildVersion: "14"}
	md := config.Defaults().Metadata
	if r, ok := NewResolver(md, ".", fb).(metadata.Static); !ok || r.Device != "pixel" {
		t.Fatalf("static resolver expected, got %T", r)
	}
	md.Resolver = config.ResolverBuildVars
	bv, ok := NewResolver(md, "/src", fb).(metadata.BuildVars)
	if !ok || bv.Dir != "/src" || bv.Timeout.Milliseconds() != 15000 || bv.Fallback != fb {
		t.Fatalf("unexpected buildvars resolver: %+v", bv)
	}
	md.Resolver = config.ResolverGit
	if _, ok := NewResolver(md, ".", fb).(metadata.Git); !ok {
		t.Fatalf("git resolver expected")
	}
}

func TestNew_StorageFailureFallsBackToNoUploads(t *testing.T) {
	cfg := config.Defaults()
	cfg.Messaging = config.Messaging{Backend: config.BackendConsole}
	n, err := New(context.Background(), cfg, Deps{
		Firebase: func(context.Context, config.Config) (*firebase.App, error) {
			return nil, errors.New("firebase storage: bucket name not specified")
		},
	})
	if err != nil {
		t.Fatalf("storage failure must not abort: %v", err)
	}
	if _, ok := n.Uploader.(storage.None); !ok {
		t.Fatalf("expected uploads disabled, got %T", n.Uploader)
	}
	if _, ok := n.Sender.(notify.Console); !ok {
		t.Fatalf("unexpected sender %T", n.Sender)
	}
}
