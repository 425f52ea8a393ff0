package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeCUE(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "notifier.cue")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BUILDNOTIFIER_TOKEN_FILE", "BUILDNOTIFIER_LOGS_DIR", "BUILDNOTIFIER_STORAGE_BACKEND",
		"BUILDNOTIFIER_BUCKET", "BUILDNOTIFIER_REGION", "AWS_REGION",
		"BUILDNOTIFIER_MESSAGING_BACKEND", "BUILDNOTIFIER_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Script != "build.sh" || cfg.TokenFile != "deviceToken.txt" || cfg.ExcerptRadius != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_MergesFile(t *testing.T) {
	clearEnv(t)
	p := writeCUE(t, `{
  configVersion: "1"
  script: "ci/build.sh"
  keywords: ["BUILD FAILED", "error:"]
  excerptRadius: 20
  metadata: { resolver: "git", device: "pixel" }
  progress: { parser: "lua", inline: "return 'x'" }
  storage: { backend: "s3", bucket: "logs-bucket", region: "eu-west-1" }
  messaging: { backend: "console" }
}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Script != "ci/build.sh" || cfg.ExcerptRadius != 20 {
		t.Fatalf("unexpected top-level: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Keywords, []string{"BUILD FAILED", "error:"}) {
		t.Fatalf("unexpected keywords: %v", cfg.Keywords)
	}
	if cfg.Metadata.Resolver != ResolverGit || cfg.Metadata.Device != "pixel" {
		t.Fatalf("unexpected metadata: %+v", cfg.Metadata)
	}
	if cfg.Metadata.DeviceVariable != "TARGET_PRODUCT" {
		t.Fatalf("default variable lost: %+v", cfg.Metadata)
	}
	if cfg.Storage.Bucket != "logs-bucket" || cfg.Storage.Region != "eu-west-1" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.TokenFile != "deviceToken.txt" {
		t.Fatalf("default token file lost: %q", cfg.TokenFile)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUILDNOTIFIER_BUCKET", "from-env")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	p := writeCUE(t, `{ storage: { backend: "s3", bucket: "from-file" } }`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Bucket != "from-env" {
		t.Fatalf("expected env bucket, got %q", cfg.Storage.Bucket)
	}
	if cfg.Messaging.CredentialsFile != "/secrets/sa.json" {
		t.Fatalf("unexpected credentials: %q", cfg.Messaging.CredentialsFile)
	}
}

func TestLoad_RejectsNonCUE(t *testing.T) {
	_, err := Load("notifier.json")
	if err == nil || err.Error() != "unsupported config format: expected .cue" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_WrongFieldType(t *testing.T) {
	clearEnv(t)
	p := writeCUE(t, `{ excerptRadius: "wide" }`)
	_, err := Load(p)
	if err == nil || err.Error() != "invalid type for field: excerptRadius (expected int)" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_SectionErrorIsPrefixed(t *testing.T) {
	clearEnv(t)
	p := writeCUE(t, `{ metadata: { timeoutMs: "soon" } }`)
	_, err := Load(p)
	if err == nil || !strings.HasPrefix(err.Error(), "metadata: invalid type for field: timeoutMs") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"radius", func(c *Config) { c.ExcerptRadius = -1 }, "invalid value for excerptRadius"},
		{"resolver", func(c *Config) { c.Metadata.Resolver = "magic" }, "invalid value for metadata.resolver"},
		{"lua without code", func(c *Config) { c.Progress.Parser = ParserLua }, "progress.inline or progress.file"},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = BackendS3 }, "storage.bucket"},
		{"local without dir", func(c *Config) { c.Storage.Backend = BackendLocal }, "storage.dir"},
		{"messaging", func(c *Config) { c.Messaging.Backend = "sms" }, "invalid value for messaging.backend"},
	}
	for _, tc := range cases {
		cfg := Defaults()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
