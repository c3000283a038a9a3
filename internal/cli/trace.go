package cli

import (
	"github.com/spf13/cobra"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	TaskID string
	Actor  string
	Action string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the event log by task, actor or action",
		Long: `Rebuild the derived SQLite index from the event log and query it.
Exactly one filter must be given. The index is a cache: deleting
.roadmap/index.db loses nothing.

Examples:
  esaa trace --task T-1010
  esaa trace --actor agent-mock
  esaa trace --action issue.report`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Trace(cmd.Context(), opts.TaskID, opts.Actor, opts.Action)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, "")
		},
	}

	cmd.Flags().StringVar(&opts.TaskID, "task", "", "filter by task id")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "filter by actor")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter by action")
	return cmd
}
