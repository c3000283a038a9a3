package cli

import (
	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Until   string
	NoWrite bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild state until event id/seq",
		Long: `Fold a prefix of the event log. --until takes a sequence number or an
event id (inclusive); omitted, the whole log replays. By default the
replayed projection overwrites the stored views.

Examples:
  esaa replay
  esaa replay --until 42
  esaa replay --until EV-00000007 --no-write`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Replay(opts.Until, !opts.NoWrite)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, result.VerifyStatus)
		},
	}

	cmd.Flags().StringVar(&opts.Until, "until", "", "event_seq (number) or event_id")
	cmd.Flags().BoolVar(&opts.NoWrite, "no-write", false, "compute replay without writing views")
	return cmd
}
