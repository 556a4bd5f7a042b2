// Package validate provides the validate command.
package validate

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap"
	"github.com/agentstation/orgmap/cmd/application"
	"github.com/agentstation/orgmap/internal/cmd/cmdutil"
	"github.com/agentstation/orgmap/internal/output"
	"github.com/agentstation/orgmap/pkg/errors"
)

// ErrInvalidSources is returned when at least one source was excluded.
var ErrInvalidSources = errors.New("one or more sources failed validation")

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.MergeFlags

	cmd := &cobra.Command{
		Use:     "validate [files...]",
		GroupID: "management",
		Short:   "Check configuration and sources without merging",
		Long: `Validate checks the merge configuration, then reads and builds every
selected source. Cycles, duplicate local ids and malformed files exclude a
source; unresolved parents and empty names are warnings.

The command fails when any source would be excluded from a merge.`,
		Example: `  orgmap validate usaspending.yaml fedreg.csv
  orgmap validate -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := cmdutil.Run(cmd, app, flags, cmdutil.ModeValidate, args)
			if err != nil {
				return err
			}
			if err := display(cmd, app, res); err != nil {
				return err
			}
			if res.Stats.Excluded > 0 {
				return ErrInvalidSources
			}
			return nil
		},
	}

	flags = cmdutil.AddMergeFlags(cmd)

	return cmd
}

// Results returns one row per source: ingested sources first, then excluded.
func Results(res *orgmap.Result) output.Data {
	warnings := make(map[string]int)
	for _, w := range res.Report.Warnings {
		warnings[w.Source]++
	}

	data := output.Data{
		Title:           "Source Validation Results:",
		Headers:         []string{"Source", "Status", "Records", "Warnings", "Details"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignLeft},
	}
	for _, t := range res.Trees {
		status := "ok"
		if warnings[t.Source()] > 0 {
			status = "warning"
		}
		data.Rows = append(data.Rows, []string{
			t.Source(), status, strconv.Itoa(t.Len()), strconv.Itoa(warnings[t.Source()]), "",
		})
	}
	for _, e := range res.Report.Excluded {
		data.Rows = append(data.Rows, []string{e.Source, "excluded", "", "", e.Error})
	}
	return data
}

func display(cmd *cobra.Command, app application.Application, res *orgmap.Result) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	formatter := output.NewFormatter(format)

	if format != output.FormatTable {
		return formatter.Format(cmd.OutOrStdout(), res.Report)
	}

	tables := []output.Data{Results(res)}
	if len(res.Report.Warnings) > 0 {
		tables = append(tables, output.Report{Report: res.Report}.Warnings())
	}
	if err := formatter.Format(cmd.OutOrStdout(), tables); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), res.Summary())
	return nil
}
