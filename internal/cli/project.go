package cli

import (
	"github.com/spf13/cobra"
)

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "project",
		Short:         "Reproject read-models from event store",
		Long:          "Re-materialize roadmap.json, issues.json and lessons.json from the full event log.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rootOpts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Project()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, "")
		},
	}
	return cmd
}
