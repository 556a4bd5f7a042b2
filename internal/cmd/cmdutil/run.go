package cmdutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/pkg/constants"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/provenance"
)

// Mode selects the client operation Run performs.
type Mode int

// Run modes.
const (
	ModeMerge Mode = iota
	ModeValidate
)

// Run opens the sources for paths, applies flags to the merge configuration
// and runs the client. Excluded sources are printed to stderr.
func Run(cmd *cobra.Command, app application.Application, flags *MergeFlags, mode Mode, paths []string) (*orgmap.Result, error) {
	cfg, err := app.MergeConfig()
	if err != nil {
		return nil, err
	}
	if flags != nil {
		flags.Apply(cmd, cfg)
	}

	srcs, err := app.Sources(paths...)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, errors.NewConfigError("sources", nil, "no sources given: pass files or list them under sources in the config file")
	}

	client, err := app.Client(orgmap.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	client.OnSourceExcluded(func(e provenance.Excluded) {
		fmt.Fprintf(cmd.ErrOrStderr(), "excluded source %s: %s\n", e.Source, e.Error)
	})

	if mode == ModeValidate {
		return client.Validate(cmd.Context(), srcs)
	}
	return client.Merge(cmd.Context(), srcs)
}

// Create opens path for writing, or returns stdout when path is empty or "-".
// The returned close func is always safe to call.
func Create(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, nil, errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions) //nolint:gosec
	if err != nil {
		return nil, nil, errors.WrapIO("create", path, err)
	}
	return f, func() error { return errors.WrapIO("close", path, f.Close()) }, nil
}

// PrintSummary writes the run summary to stderr unless quiet.
func PrintSummary(cmd *cobra.Command, res *orgmap.Result) {
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), res.Summary())
}
