package cli

import (
	"github.com/spf13/cobra"
)

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	DryRun bool
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process all pending files from .roadmap/inbox/",
		Long: `Sweep .roadmap/inbox/ for agent result files named {task_id}.json or
{actor}__{task_id}.json. Accepted files move to inbox/done/, rejected
ones to inbox/rejected/.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Process(opts.DryRun)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, "")
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate without persisting or moving files")
	return cmd
}
