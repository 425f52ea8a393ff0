// Package cmdutil holds setup shared by the buildnotifier subcommands.
package cmdutil

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flarebyte/buildnotifier/internal/config"
	"github.com/flarebyte/buildnotifier/internal/console"
)

// ExitError carries a process exit code.
type ExitError struct {
	Code int
	Msg  string
}

func (e ExitError) Error() string { return e.Msg }
func (e ExitError) ExitCode() int { return e.Code }

// Globals reads the persistent root flags.
func Globals(cmd *cobra.Command) (cfgPath string, debug, noColor bool) {
	cfgPath, _ = cmd.Flags().GetString("config")
	debug, _ = cmd.Flags().GetBool("debug")
	noColor, _ = cmd.Flags().GetBool("no-color")
	return cfgPath, debug, noColor
}

// Setup configures logging and loads the configuration. Config errors exit 1.
func Setup(cmd *cobra.Command) (config.Config, *console.Printer, error) {
	cfgPath, debug, noColor := Globals(cmd)
	console.SetupLogging(cmd.ErrOrStderr(), debug, noColor)
	printer := console.NewPrinter(cmd.OutOrStdout(), noColor)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, ExitError{Code: 1, Msg: err.Error()}
	}
	return cfg, printer, nil
}

// Under resolves p against dir unless it is absolute.
func Under(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

// Exists reports whether p names a regular file.
func Exists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
