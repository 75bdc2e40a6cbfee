// Package cmdutil provides the flags and run plumbing shared by the find and
// resolve commands.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunFlags holds flags common to every run. Zero values fall back to the
// application settings.
type RunFlags struct {
	Input           string
	OutDir          string
	Column          string
	Workers         int
	MaxRetries      int
	Timeout         time.Duration
	SkipCheck       bool
	SummaryMarkdown bool
	SummaryYAML     bool
}

// NewRunFlagSet returns the run flags as a standalone flag set bound to flags.
func NewRunFlagSet(flags *RunFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)

	fs.StringVarP(&flags.Input, "in", "i", "",
		"Extract CSV to read")
	fs.StringVar(&flags.OutDir, "out-dir", "",
		"Directory for reports and logs (default $OUT_FOLDER or .)")
	fs.StringVar(&flags.Column, "column", "",
		"Identifier column (default: Variant SKU, else SKU)")
	fs.IntVarP(&flags.Workers, "workers", "w", 0,
		"SKUs looked up concurrently")
	fs.IntVar(&flags.MaxRetries, "max-retries", -1,
		"Retries for transient failures")
	fs.DurationVar(&flags.Timeout, "timeout", 0,
		"Abort the run after this long (0 = no limit)")
	fs.BoolVar(&flags.SkipCheck, "skip-check", false,
		"Skip the catalog access check before the run")
	fs.BoolVar(&flags.SummaryMarkdown, "summary-md", false,
		"Write summary.md to the output directory")
	fs.BoolVar(&flags.SummaryYAML, "summary-yaml", false,
		"Write summary.yaml to the output directory")

	return fs
}

// AddRunFlags adds the run flags to a command.
func AddRunFlags(cmd *cobra.Command) *RunFlags {
	flags := &RunFlags{}
	cmd.Flags().AddFlagSet(NewRunFlagSet(flags))
	return flags
}

// ResolveFlags holds flags that only apply to resolve.
type ResolveFlags struct {
	DryRun      bool
	Yes         bool
	Concurrency int
}

// AddResolveFlags adds resolve flags to a command.
func AddResolveFlags(cmd *cobra.Command) *ResolveFlags {
	flags := &ResolveFlags{}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Plan deletions without performing them")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false,
		"Confirm deletions (without it the run is a dry run)")
	cmd.Flags().IntVar(&flags.Concurrency, "delete-concurrency", 1,
		"Deletes issued concurrently within one SKU")

	return flags
}
