package cli

import (
	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	RunID               string
	MasterCorrelationID string
	Force               bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize canonical clean-state",
		Long: `Initialize the project root: seed directories, the default agent
contract and result schema, and write the genesis event batch.

A store that already holds events blocks init unless --force is given.
An empty --run-id generates a RUN-<uuid> identifier.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Init(opts.RunID, opts.MasterCorrelationID, opts.Force)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, "")
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run-id", "RUN-0001", "run identifier (empty generates RUN-<uuid>)")
	cmd.Flags().StringVar(&opts.MasterCorrelationID, "master-correlation-id", "CID-ESAA-INIT", "master correlation id")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "truncate and reinitialize an existing store")
	return cmd
}
