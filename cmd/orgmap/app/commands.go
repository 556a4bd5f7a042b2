package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap/cmd/orgmap/cmd/diff"
	"github.com/agentstation/orgmap/cmd/orgmap/cmd/merge"
	"github.com/agentstation/orgmap/cmd/orgmap/cmd/report"
	"github.com/agentstation/orgmap/cmd/orgmap/cmd/validate"
	"github.com/agentstation/orgmap/cmd/orgmap/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(diff.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
