package config

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
)

// Resolver names.
const (
	ResolverStatic    = "static"
	ResolverBuildVars = "buildvars"
	ResolverGit       = "git"
)

// Progress parser names.
const (
	ParserBracket = "bracket"
	ParserLua     = "lua"
)

// Backend names shared by storage and messaging.
const (
	BackendFirebase = "firebase"
	BackendS3       = "s3"
	BackendLocal    = "local"
	BackendNone     = "none"
	BackendFCM      = "fcm"
	BackendConsole  = "console"
)

// VarPlaceholder is replaced with the variable name in Metadata.Command.
const VarPlaceholder = "{name}"

// Config is the resolved notifier configuration.
type Config struct {
	Script        string    `json:"script"`
	TokenFile     string    `json:"tokenFile"`
	LogsDir       string    `json:"logsDir"`
	Keywords      []string  `json:"keywords"`
	ExcerptRadius int       `json:"excerptRadius"`
	Metadata      Metadata  `json:"metadata"`
	Progress      Progress  `json:"progress"`
	Storage       Storage   `json:"storage"`
	Messaging     Messaging `json:"messaging"`
}

// Metadata selects how device and build version are obtained.
type Metadata struct {
	Resolver        string   `json:"resolver"`
	Device          string   `json:"device,omitempty"`
	BuildVersion    string   `json:"buildVersion,omitempty"`
	DeviceVariable  string   `json:"deviceVariable"`
	VersionVariable string   `json:"versionVariable"`
	Command         []string `json:"command"`
	TimeoutMs       int      `json:"timeoutMs"`
}

// Progress selects the progress marker parser.
type Progress struct {
	Parser    string `json:"parser"`
	Inline    string `json:"inline,omitempty"`
	File      string `json:"file,omitempty"`
	TimeoutMs int    `json:"timeoutMs"`
}

// Storage configures the artifact upload backend.
type Storage struct {
	Backend string `json:"backend"`
	Bucket  string `json:"bucket,omitempty"`
	Region  string `json:"region,omitempty"`
	Dir     string `json:"dir,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
}

// Messaging configures the push notification backend.
type Messaging struct {
	Backend         string `json:"backend"`
	ProjectID       string `json:"projectId,omitempty"`
	CredentialsFile string `json:"credentialsFile,omitempty"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Script:        "build.sh",
		TokenFile:     "deviceToken.txt",
		LogsDir:       "logs",
		Keywords:      []string{"FAILED:", "Error", "ERROR", "error"},
		ExcerptRadius: 100,
		Metadata: Metadata{
			Resolver:        ResolverStatic,
			DeviceVariable:  "TARGET_PRODUCT",
			VersionVariable: "PLATFORM_VERSION",
			Command: []string{
				"bash", "-c",
				"source build/envsetup.sh >/dev/null 2>&1 && get_build_var " + VarPlaceholder,
			},
			TimeoutMs: 15000,
		},
		Progress: Progress{
			Parser:    ParserBracket,
			TimeoutMs: 1000,
		},
		Storage: Storage{
			Backend: BackendFirebase,
		},
		Messaging: Messaging{
			Backend: BackendFCM,
		},
	}
}

// Load resolves the configuration: defaults, then the optional CUE file at
// path, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		v, err := compileCUE(path)
		if err != nil {
			return Config{}, err
		}
		if err := merge(&cfg, v); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func merge(cfg *Config, v cue.Value) error {
	var version string
	if err := optString(v, "configVersion", &version); err != nil {
		return err
	}
	if version != "" && !IsSupportedConfigVersion(version) {
		return fmt.Errorf("unsupported configVersion: %q (supported: %s)", version, SupportedConfigVersionsCSV())
	}
	steps := []func() error{
		func() error { return optString(v, "script", &cfg.Script) },
		func() error { return optString(v, "tokenFile", &cfg.TokenFile) },
		func() error { return optString(v, "logsDir", &cfg.LogsDir) },
		func() error { return optStringList(v, "keywords", &cfg.Keywords) },
		func() error { return optInt(v, "excerptRadius", &cfg.ExcerptRadius) },
		func() error { return parseMetadataSection(v, &cfg.Metadata) },
		func() error { return parseProgressSection(v, &cfg.Progress) },
		func() error { return parseStorageSection(v, &cfg.Storage) },
		func() error { return parseMessagingSection(v, &cfg.Messaging) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if c.ExcerptRadius < 0 {
		return fmt.Errorf("invalid value for excerptRadius: %d (must be >= 0)", c.ExcerptRadius)
	}
	if err := oneOf("metadata.resolver", c.Metadata.Resolver, ResolverStatic, ResolverBuildVars, ResolverGit); err != nil {
		return err
	}
	if c.Metadata.Resolver == ResolverBuildVars && len(c.Metadata.Command) == 0 {
		return fmt.Errorf("missing required field: metadata.command")
	}
	if err := oneOf("progress.parser", c.Progress.Parser, ParserBracket, ParserLua); err != nil {
		return err
	}
	if c.Progress.Parser == ParserLua && c.Progress.Inline == "" && c.Progress.File == "" {
		return fmt.Errorf("missing required field: progress.inline or progress.file")
	}
	if err := oneOf("storage.backend", c.Storage.Backend, BackendFirebase, BackendS3, BackendLocal, BackendNone); err != nil {
		return err
	}
	if c.Storage.Backend == BackendS3 && c.Storage.Bucket == "" {
		return fmt.Errorf("missing required field: storage.bucket")
	}
	if c.Storage.Backend == BackendLocal && c.Storage.Dir == "" {
		return fmt.Errorf("missing required field: storage.dir")
	}
	return oneOf("messaging.backend", c.Messaging.Backend, BackendFCM, BackendConsole)
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (expected one of: %s)", field, value, strings.Join(allowed, ", "))
}

// applyEnv overlays BUILDNOTIFIER_* variables and the standard Google
// credentials variable.
func applyEnv(cfg *Config) {
	cfg.TokenFile = getEnv("BUILDNOTIFIER_TOKEN_FILE", cfg.TokenFile)
	cfg.LogsDir = getEnv("BUILDNOTIFIER_LOGS_DIR", cfg.LogsDir)
	cfg.Storage.Backend = getEnv("BUILDNOTIFIER_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Bucket = getEnv("BUILDNOTIFIER_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("BUILDNOTIFIER_REGION", getEnv("AWS_REGION", cfg.Storage.Region))
	cfg.Messaging.Backend = getEnv("BUILDNOTIFIER_MESSAGING_BACKEND", cfg.Messaging.Backend)
	cfg.Messaging.ProjectID = getEnv("BUILDNOTIFIER_PROJECT_ID", cfg.Messaging.ProjectID)
	cfg.Messaging.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Messaging.CredentialsFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
