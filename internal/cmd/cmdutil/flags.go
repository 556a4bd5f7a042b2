// Package cmdutil provides shared flags and run helpers for orgmap commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/orgmap/pkg/config"
)

// MergeFlags holds the flags that override the merge configuration.
type MergeFlags struct {
	Threshold float64
	Priority  []string
	Include   []string
	Exclude   []string
}

// AddMergeFlags adds merge override flags to a command.
func AddMergeFlags(cmd *cobra.Command) *MergeFlags {
	flags := &MergeFlags{}

	cmd.Flags().Float64Var(&flags.Threshold, "threshold", 0,
		"Acceptance threshold in [0,1] (default from config)")
	cmd.Flags().StringSliceVar(&flags.Priority, "priority", nil,
		"Source ids in priority order, highest first")
	cmd.Flags().StringSliceVar(&flags.Include, "include", nil,
		"Only merge sources matching these glob or regex patterns")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil,
		"Skip sources matching these glob or regex patterns")

	return flags
}

// Apply copies every flag the user set onto cfg.
func (f *MergeFlags) Apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = f.Threshold
	}
	if cmd.Flags().Changed("priority") {
		cfg.Priority = f.Priority
	}
	if cmd.Flags().Changed("include") {
		cfg.Include = f.Include
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = f.Exclude
	}
}
