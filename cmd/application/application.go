// Package application provides the application interface for orgmap commands.
//
// Commands accept this interface rather than the concrete App from
// cmd/orgmap/app, so they can be tested with Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            srcs, err := app.Sources(args...)
//	            if err != nil {
//	                return err
//	            }
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            result, err := client.Merge(cmd.Context(), srcs)
//	            // ... render result
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/pkg/config"
	"github.com/agentstation/orgmap/pkg/sources"
)

// Application provides what commands need from the running CLI.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// MergeConfig returns a copy of the merge configuration loaded from the
	// config file and ORGMAP_ environment.
	MergeConfig() (*config.Config, error)

	// Client returns a new client configured from MergeConfig. Extra options
	// are applied after the defaults.
	Client(opts ...orgmap.Option) (orgmap.Client, error)

	// Sources opens the configured sources followed by the given files.
	Sources(paths ...string) ([]sources.Source, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format flag value.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
