package cli

import (
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Steps  int
	DryRun bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute orchestration steps (mock adapter)",
		Long: `Drive the orchestration loop: select the next actionable task, execute
it through the adapter, validate the result, and append the accepted
events. Rejected results become output.rejected audit events and the
loop continues.

Exit codes:
  0 - steps executed, projection verifies
  1 - domain error
  2 - projection verify failed after the run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Run(opts.Steps, opts.DryRun)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, result.VerifyStatus)
		},
	}

	cmd.Flags().IntVar(&opts.Steps, "steps", 1, "number of orchestration steps")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute without persisting")
	return cmd
}
