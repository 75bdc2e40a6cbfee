// Package find provides the find command.
package find

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/skusweep"
	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/internal/cmd/cmdutil"
)

// NewCommand creates the find command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.RunFlags

	cmd := &cobra.Command{
		Use:     "find",
		GroupID: "core",
		Short:   "Report SKUs shared by more than one product",
		Args:    cobra.NoArgs,
		Long: `Find reads a product extract, looks every distinct SKU up in the catalog
and writes duplicate_skus.csv with one SKU,Count row for each SKU that more
than one product carries.

The identifier column is "Variant SKU" when the first row has one, otherwise
"SKU". Extraction stops at the first row without a value.

Find never deletes anything. Feed its output to resolve.`,
		Example: `  skusweep find --in products_export.csv
  skusweep find -i products.csv --out-dir out --summary-md
  IN_FILE=products.csv OUT_FOLDER=out skusweep find`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutil.Execute(cmd.Context(), app, cmdutil.Job{
				Mode:   skusweep.ModeFind,
				Run:    flags,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
		},
	}

	flags = cmdutil.AddRunFlags(cmd)

	return cmd
}
