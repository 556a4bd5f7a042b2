// Package version provides the version command.
package version

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/pkg/normalize"
	"github.com/agentstation/orgmap/pkg/similarity"
)

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("orgmap %s\n", app.Version())
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cmd.Printf("  commit:     %s\n", app.Commit())
				cmd.Printf("  built:      %s\n", app.Date())
				cmd.Printf("  built by:   %s\n", app.BuiltBy())
				cmd.Printf("  normalize:  %s\n", normalize.Version)
				cmd.Printf("  similarity: %s\n", similarity.Version)
			}
		},
	}

	return cmd
}
