// Package resolve provides the resolve command.
package resolve

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/skusweep"
	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/internal/cmd/cmdutil"
)

// NewCommand creates the resolve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		runFlags     *cmdutil.RunFlags
		resolveFlags *cmdutil.ResolveFlags
	)

	cmd := &cobra.Command{
		Use:     "resolve",
		GroupID: "core",
		Short:   "Delete duplicate products, keeping one per SKU",
		Args:    cobra.NoArgs,
		Long: `Resolve reads SKUs (by default the duplicate_skus.csv written by find),
looks each one up and keeps a single product per SKU:

• an ACTIVE product with a title, description and variants
• otherwise any ACTIVE product
• otherwise the most recently published product
• otherwise the first product returned

Every other product carrying the SKU is deleted. Each SKU is appended to
audit.jsonl as soon as it is processed.

Nothing is deleted unless --yes is given. Without it, or with --dry-run,
the run only reports what would be deleted.`,
		Example: `  skusweep resolve                          # Plan deletions from duplicate_skus.csv
  skusweep resolve --yes                    # Delete duplicates
  skusweep resolve -i skus.csv --dry-run    # Plan from another extract
  skusweep resolve --yes -o wide            # Show every SKU in the result`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutil.Execute(cmd.Context(), app, cmdutil.Job{
				Mode:    skusweep.ModeResolve,
				Run:     runFlags,
				Resolve: resolveFlags,
				Stdout:  cmd.OutOrStdout(),
				Stderr:  cmd.ErrOrStderr(),
			})
		},
	}

	runFlags = cmdutil.AddRunFlags(cmd)
	resolveFlags = cmdutil.AddResolveFlags(cmd)

	return cmd
}
