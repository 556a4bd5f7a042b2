// Package diff provides the diff command.
package diff

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/internal/cmd/cmdutil"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/export"
)

// ErrChanged is returned when --exit-code is set and the trees differ.
var ErrChanged = errors.New("merged tree changed")

// Flags holds diff-specific flags.
type Flags struct {
	*cmdutil.MergeFlags
	Context  int
	ExitCode bool
}

// NewCommand creates the diff command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "diff <previous-tree> [files...]",
		GroupID: "core",
		Short:   "Compare a saved merged tree with a fresh merge",
		Long: `Diff runs a merge and prints a unified diff between a tree saved earlier
with 'orgmap merge -o tree' and the tree the current sources produce.

Merges are deterministic, so an empty diff means the sources and settings
produce exactly the saved hierarchy.`,
		Example: `  orgmap merge *.yaml --out last.txt
  orgmap diff last.txt *.yaml
  orgmap diff last.txt *.yaml --exit-code   # exit 1 when changed`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args[0], args[1:])
		},
	}

	flags.MergeFlags = cmdutil.AddMergeFlags(cmd)
	cmd.Flags().IntVar(&flags.Context, "context", 3, "Lines of context around each change")
	cmd.Flags().BoolVar(&flags.ExitCode, "exit-code", false, "Fail when the trees differ")

	return cmd
}

// Execute merges the sources and diffs the result against previous.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, previous string, paths []string) error {
	before, err := os.ReadFile(previous) //nolint:gosec
	if err != nil {
		return errors.WrapIO("read", previous, err)
	}

	res, err := cmdutil.Run(cmd, app, flags.MergeFlags, cmdutil.ModeMerge, paths)
	if err != nil {
		return err
	}
	writer, err := export.New(export.FormatTree)
	if err != nil {
		return err
	}
	var after bytes.Buffer
	if err := writer.Write(&after, res.Forest); err != nil {
		return err
	}

	text, err := Unified(previous, string(before), after.String(), flags.Context)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "No changes")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	if flags.ExitCode {
		return ErrChanged
	}
	return nil
}

// Unified returns the unified diff from before to after, or "" when equal.
func Unified(name, before, after string, context int) (string, error) {
	if before == after {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   "current",
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(diff)
}
