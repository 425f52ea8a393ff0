package run

import (
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/cmdutil"
	"github.com/flarebyte/buildnotifier/internal/app"
	"github.com/flarebyte/buildnotifier/internal/config"
	"github.com/flarebyte/buildnotifier/internal/metadata"
	"github.com/flarebyte/buildnotifier/internal/notifier"
	"github.com/spf13/cobra"
)

var (
	flagDir      string
	flagLogsDir  string
	flagResolver string
	flagRadius   int
	flagKeywords []string
)

// Cmd represents the `buildnotifier run` command.
var Cmd = &cobra.Command{
	Use:   "run [device] [buildVersion] [script] [tokenFile]",
	Short: "Run a build script, upload its logs and notify the device",
	Long: `Run executes the build script through the host shell, saves the full log
and, on failure, an error excerpt under the logs directory, uploads both and
sends a push notification to the token read from the token file.

Exit codes: 0 sent, 1 aborted or bad config, 2 build failed, 3 not delivered.`,
	Args:          cobra.MaximumNArgs(4),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, err := cmdutil.Setup(cmd)
		if err != nil {
			return err
		}
		applyArgs(&cfg, args)
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}

		n, err := app.New(cmd.Context(), cfg, app.Deps{Printer: printer, DryRunOut: cmd.OutOrStdout()})
		if err != nil {
			return cmdutil.ExitError{Code: exitCodeAborted, Msg: err.Error()}
		}
		fallback := metadata.Info{Device: cfg.Metadata.Device, BuildVersion: cfg.Metadata.BuildVersion}
		n.Resolver = app.NewResolver(cfg.Metadata, flagDir, fallback)

		out, err := n.Run(cmd.Context(), requestFor(cfg))
		if err != nil {
			return cmdutil.ExitError{Code: exitCodeAborted, Msg: err.Error()}
		}
		return evaluateRunExit(out)
	},
}

// applyArgs maps the positional arguments onto cfg.
func applyArgs(cfg *config.Config, args []string) {
	targets := []*string{&cfg.Metadata.Device, &cfg.Metadata.BuildVersion, &cfg.Script, &cfg.TokenFile}
	for i, a := range args {
		if a != "" {
			*targets[i] = a
		}
	}
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("logs-dir") {
		cfg.LogsDir = flagLogsDir
	}
	if cmd.Flags().Changed("resolver") {
		cfg.Metadata.Resolver = flagResolver
	}
	if cmd.Flags().Changed("radius") {
		cfg.ExcerptRadius = flagRadius
	}
	if cmd.Flags().Changed("keyword") {
		cfg.Keywords = flagKeywords
	}
	if err := cfg.Validate(); err != nil {
		return cmdutil.ExitError{Code: exitCodeAborted, Msg: err.Error()}
	}
	return nil
}

func requestFor(cfg config.Config) notifier.Request {
	return notifier.Request{
		Script:    cfg.Script,
		Dir:       flagDir,
		TokenFile: cmdutil.Under(flagDir, cfg.TokenFile),
		LogsDir:   cmdutil.Under(flagDir, cfg.LogsDir),
		Keywords:  cfg.Keywords,
		Radius:    cfg.ExcerptRadius,
	}
}

func init() {
	Cmd.Flags().StringVar(&flagDir, "dir", ".", "Working directory for the build script")
	Cmd.Flags().StringVar(&flagLogsDir, "logs-dir", "", "Directory for build and error logs")
	Cmd.Flags().StringVar(&flagResolver, "resolver", "", "Metadata resolver: static|buildvars|git")
	Cmd.Flags().IntVar(&flagRadius, "radius", 0, "Lines kept on each side of the failure line")
	Cmd.Flags().StringArrayVar(&flagKeywords, "keyword", nil, "Failure keyword, in priority order (repeatable)")
}
