// Package report provides the report command.
package report

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/internal/cmd/cmdutil"
	"github.com/agentstation/orgmap/internal/output"
	"github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/provenance"
)

// Flags holds report-specific flags.
type Flags struct {
	*cmdutil.MergeFlags
	From string
}

// NewCommand creates the report command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "report [files...]",
		GroupID: "core",
		Short:   "Show merged clusters and parent conflicts",
		Long: `Report runs a merge and prints its provenance: which source records were
merged into each node, every parent conflict and how it was resolved, excluded
sources and ingestion warnings.

With --from, a report saved by 'orgmap merge --report' is printed instead.`,
		Example: `  orgmap report usaspending.yaml fedreg.csv
  orgmap report *.yaml -o json
  orgmap report --from run.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := load(cmd, app, flags, args)
			if err != nil {
				return err
			}
			return render(cmd, app, report)
		},
	}

	flags.MergeFlags = cmdutil.AddMergeFlags(cmd)
	cmd.Flags().StringVar(&flags.From, "from", "", "Print a saved YAML report instead of running a merge")

	return cmd
}

func load(cmd *cobra.Command, app application.Application, flags *Flags, args []string) (*provenance.Report, error) {
	if flags.From != "" {
		report, err := provenance.Load(flags.From)
		if err != nil {
			return nil, err
		}
		if report == nil {
			return nil, errors.NewNotFoundError("report", flags.From)
		}
		return report, nil
	}

	res, err := cmdutil.Run(cmd, app, flags.MergeFlags, cmdutil.ModeMerge, args)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

func render(cmd *cobra.Command, app application.Application, report *provenance.Report) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	view := output.Report{Report: report}
	formatter := output.NewFormatter(format)
	if format == output.FormatTable {
		return formatter.Format(cmd.OutOrStdout(), view.Tables())
	}
	return formatter.Format(cmd.OutOrStdout(), view)
}
