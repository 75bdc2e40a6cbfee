package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/skusweep/cmd/skusweep/cmd/find"
	"github.com/agentstation/skusweep/cmd/skusweep/cmd/resolve"
	"github.com/agentstation/skusweep/cmd/skusweep/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(find.NewCommand(a))
	rootCmd.AddCommand(resolve.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}
