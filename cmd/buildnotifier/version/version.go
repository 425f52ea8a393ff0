package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/flarebyte/buildnotifier/internal/buildinfo"
	"github.com/spf13/cobra"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagShort || !flagJSON {
			_, err := fmt.Fprintf(out, "buildnotifier %s\n", buildinfo.Summary())
			return err
		}

		// JSON goes to stdout, a readable line to stderr.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "buildnotifier version: %s\n", buildinfo.Summary())
		return encodeJSON(out, map[string]any{
			"version":   buildinfo.Version,
			"commit":    buildinfo.Commit,
			"date":      buildinfo.Date,
			"built_by":  buildinfo.BuiltBy,
			"go":        runtime.Version(),
			"go_os":     runtime.GOOS,
			"go_arch":   runtime.GOARCH,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	},
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
