package diagnose

import (
	"encoding/json"
	"io"
	"runtime"

	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/cmdutil"
	"github.com/flarebyte/buildnotifier/internal/config"
	"github.com/flarebyte/buildnotifier/internal/runner"
	"github.com/spf13/cobra"
)

var flagDir string

// Cmd implements `buildnotifier diagnose`.
var Cmd = &cobra.Command{
	Use:           "diagnose",
	Short:         "Print the resolved configuration without running anything",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := cmdutil.Setup(cmd)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), buildReport(cfg, flagDir, runtime.GOOS))
	},
}

type report struct {
	Config       config.Config `json:"config"`
	ShellCommand []string      `json:"shellCommand"`
	Script       fileStatus    `json:"script"`
	TokenFile    fileStatus    `json:"tokenFile"`
	Storage      string        `json:"storage"`
	Messaging    string        `json:"messaging"`
}

type fileStatus struct {
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

func buildReport(cfg config.Config, dir, goos string) report {
	script := cmdutil.Under(dir, cfg.Script)
	token := cmdutil.Under(dir, cfg.TokenFile)
	return report{
		Config:       cfg,
		ShellCommand: runner.ShellCommand(goos, cfg.Script),
		Script:       fileStatus{Path: script, Present: cmdutil.Exists(script)},
		// The token itself is never printed.
		TokenFile: fileStatus{Path: token, Present: cmdutil.Exists(token)},
		Storage:   cfg.Storage.Backend,
		Messaging: cfg.Messaging.Backend,
	}
}

func writeReport(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func init() {
	Cmd.Flags().StringVar(&flagDir, "dir", ".", "Working directory the build would run in")
}
