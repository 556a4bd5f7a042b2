// Package merge provides the merge command.
package merge

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/internal/cmd/cmdutil"
	"github.com/agentstation/orgmap/pkg/export"
)

// Flags holds merge-specific flags.
type Flags struct {
	*cmdutil.MergeFlags
	Out    string
	Report string
}

// NewCommand creates the merge command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge [files...]",
		GroupID: "core",
		Short:   "Merge source hierarchies into one forest",
		Long: `Merge reads every configured source plus the files given as arguments,
builds one tree per source, matches lineage paths across sources and writes
the merged forest.

Each file is one source. Its id is the file name without extension unless the
file declares one. Sources that fail to ingest are excluded and reported; the
run continues with the rest.`,
		Example: `  orgmap merge usaspending.yaml fedreg.csv                 # Print the merged tree
  orgmap merge *.yaml -o json --out merged.json            # Write nested JSON
  orgmap merge *.yaml --priority usaspending --report r.yaml
  orgmap merge *.yaml --threshold 0.98 -o dot | dot -Tsvg > orgs.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args)
		},
	}

	flags.MergeFlags = cmdutil.AddMergeFlags(cmd)
	cmd.Flags().StringVar(&flags.Out, "out", "", "Write the export to this file instead of stdout")
	cmd.Flags().StringVar(&flags.Report, "report", "", "Write the YAML provenance report to this file")

	return cmd
}

// Execute runs the merge and writes its outputs.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, args []string) error {
	format := export.Format(app.OutputFormat())
	if format == "" {
		format = export.FormatTree
	}
	writer, err := export.New(format)
	if err != nil {
		return err
	}

	res, err := cmdutil.Run(cmd, app, flags.MergeFlags, cmdutil.ModeMerge, args)
	if err != nil {
		return err
	}

	err = write(cmd, flags.Out, func(w io.Writer) error {
		return writer.Write(w, res.Forest)
	})
	if err != nil {
		return err
	}
	if flags.Report != "" {
		if err := writeReport(cmd, flags.Report, res); err != nil {
			return err
		}
	}

	cmdutil.PrintSummary(cmd, res)
	return nil
}

func writeReport(cmd *cobra.Command, path string, res *orgmap.Result) error {
	return write(cmd, path, func(w io.Writer) error {
		return res.Report.WriteYAML(w)
	})
}

// write runs fn against path, or stdout when path is empty.
func write(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	w, closeFn, err := cmdutil.Create(cmd, path)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}
