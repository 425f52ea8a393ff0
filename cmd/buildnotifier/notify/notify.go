package notify

import (
	"github.com/flarebyte/buildnotifier/cmd/buildnotifier/cmdutil"
	"github.com/flarebyte/buildnotifier/internal/app"
	"github.com/flarebyte/buildnotifier/internal/notifier"
	"github.com/spf13/cobra"
)

// Cmd represents the `buildnotifier notify` command.
var Cmd = &cobra.Command{
	Use:   "notify targetToken device time status timeTaken [logFile] [step] [buildVersion]",
	Short: "Notify a device about a build that already ran",
	Long: `Notify sends the result of an externally run build. time is the start
time in epoch milliseconds, status is true or false and timeTaken is in
milliseconds. logFile, when present, is uploaded first.`,
	Args:          cobra.RangeArgs(5, 8),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, printer, err := cmdutil.Setup(cmd)
		if err != nil {
			return err
		}
		req := requestFromArgs(args)
		if err := req.Validate(); err != nil {
			return cmdutil.ExitError{Code: notifier.ExitAborted, Msg: err.Error()}
		}
		n, err := app.New(cmd.Context(), cfg, app.Deps{Printer: printer, DryRunOut: cmd.OutOrStdout()})
		if err != nil {
			return cmdutil.ExitError{Code: notifier.ExitAborted, Msg: err.Error()}
		}
		out, err := n.Notify(cmd.Context(), req)
		if err != nil {
			return cmdutil.ExitError{Code: notifier.ExitAborted, Msg: err.Error()}
		}
		switch code := out.ExitCode(); code {
		case notifier.ExitAborted:
			return cmdutil.ExitError{Code: code, Msg: "aborted: no device token"}
		case notifier.ExitNotSent:
			return cmdutil.ExitError{Code: code, Msg: "notification not delivered"}
		}
		// A reported build failure is not an error of this command.
		return nil
	},
}

func requestFromArgs(args []string) notifier.NotifyRequest {
	at := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	return notifier.NotifyRequest{
		Token:        at(0),
		Device:       at(1),
		Time:         at(2),
		Status:       at(3),
		TimeTaken:    at(4),
		LogFile:      at(5),
		Step:         at(6),
		BuildVersion: at(7),
	}
}
