package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/esaa/internal/service"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Root string
}

// Service builds the orchestrator service for the resolved root.
func (o *RootOptions) Service() (*service.Service, error) {
	root, err := filepath.Abs(o.Root)
	if err != nil {
		return nil, err
	}
	return service.New(root), nil
}

// NewRootCommand creates the root command for the esaa CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "esaa",
		Short:         "ESAA deterministic orchestrator core",
		Long:          "Event-sourced orchestrator coordinating agent workers through a task roadmap.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Root, "root", ".", "project root path")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}
