package root

import (
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/diagnose"
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/notify"
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/run"
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for buildnotifier.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildnotifier",
		Short: "Run a build script and push its result to a phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to config file (.cue)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)
	cmd.AddCommand(notify.Cmd)
	cmd.AddCommand(diagnose.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
