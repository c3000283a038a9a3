package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/esaa/internal/model"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Actor  string
	DryRun bool
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Validate and apply an agent.result JSON",
		Long: `Validate a structured agent result against the contract and apply it
to the event store. Reads from the given file, or stdin when the file
is "-" or omitted.

Examples:
  esaa submit result.json --actor agent-spec
  cat result.json | esaa submit --actor claude-code --dry-run`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}
			agentOutput, err := readAgentResult(cmd.InOrStdin(), file)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}

			svc, err := opts.Service()
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			result, err := svc.Submit(agentOutput, opts.Actor, opts.DryRun)
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			return printResult(cmd.OutOrStdout(), result, result.VerifyStatus)
		},
	}

	cmd.Flags().StringVar(&opts.Actor, "actor", "", "agent identity (e.g. agent-spec, claude-code)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate without persisting")
	cmd.MarkFlagRequired("actor")
	return cmd
}

func readAgentResult(stdin io.Reader, file string) (map[string]any, error) {
	var raw []byte
	var err error
	if file == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, model.Newf(model.CodeInvalidArgument, "read agent result: %v", err)
	}

	var agentOutput map[string]any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&agentOutput); err != nil {
		return nil, model.Newf(model.CodeSchemaInvalid, "agent result is not valid JSON: %v", err)
	}
	return agentOutput, nil
}
