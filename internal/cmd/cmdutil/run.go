package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/skusweep"
	"github.com/agentstation/skusweep/internal/cmd/alerts"
	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/internal/cmd/output"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/extract"
	"github.com/agentstation/skusweep/pkg/logging"
	"github.com/agentstation/skusweep/pkg/report"
)

// Job describes one CLI run.
type Job struct {
	Mode    skusweep.Mode
	Run     *RunFlags
	Resolve *ResolveFlags
	// Stdout receives the formatted report.
	Stdout io.Writer
	// Stderr receives status alerts.
	Stderr io.Writer
}

// Paths are the files a job reads and writes.
type Paths struct {
	Input  string
	OutDir string
	Report string
	Log    string
}

// ResolvePaths works out where a job reads its extract from and writes its
// report to. Detection reads IN_FILE and writes duplicate_skus.csv;
// resolution reads duplicate_skus.csv unless told otherwise and writes
// audit.jsonl.
func ResolvePaths(mode skusweep.Mode, flags *RunFlags, settings application.Settings) (Paths, error) {
	outDir := firstNonEmpty(flags.OutDir, settings.OutDir, ".")
	p := Paths{
		OutDir: outDir,
		Log:    filepath.Join(outDir, constants.LogFile),
	}

	switch mode {
	case skusweep.ModeFind:
		p.Input = firstNonEmpty(flags.Input, settings.InFile)
		p.Report = filepath.Join(outDir, constants.DuplicatesFile)
		if p.Input == "" {
			return p, errors.NewValidationError("in", "", "no extract given; use --in or IN_FILE")
		}
		if samePath(p.Input, p.Report) {
			return p, errors.NewValidationError("in", p.Input, "extract would be overwritten by the duplicates report")
		}
	case skusweep.ModeResolve:
		p.Input = firstNonEmpty(flags.Input, filepath.Join(outDir, constants.DuplicatesFile))
		p.Report = filepath.Join(outDir, constants.AuditFile)
	default:
		return p, errors.NewValidationError("mode", mode, "must be find or resolve")
	}
	return p, nil
}

// Execute runs a job against the application's catalog and writes the
// outputs. The report is printed even when the run fails part way.
func Execute(ctx context.Context, app application.Application, job Job) error {
	logger := app.Logger()
	settings := app.Settings()

	paths, err := ResolvePaths(job.Mode, job.Run, settings)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	if err := os.MkdirAll(paths.OutDir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", paths.OutDir, err)
	}

	in, err := os.Open(paths.Input)
	if err != nil {
		return errors.WrapIO("open", paths.Input, err)
	}
	defer func() { _ = in.Close() }()

	readerOpts := []extract.Option{extract.WithPath(paths.Input)}
	if job.Run.Column != "" {
		readerOpts = append(readerOpts, extract.WithColumn(job.Run.Column))
	}
	src := extract.NewReader(in, readerOpts...)

	client, err := app.Catalog()
	if err != nil {
		return err
	}

	reportSink, err := openReportSink(job.Mode, paths.Report)
	if err != nil {
		return err
	}

	fileLogger, logFile, err := logging.NewFileLogger(paths.Log, map[string]any{"mode": job.Mode.String()})
	if err != nil {
		_ = reportSink.Close()
		return err
	}
	defer func() { _ = logFile.Close() }()

	opts := runOptions(job, settings)
	opts = append(opts, skusweep.WithSinks(reportSink, report.NewLogSink(&fileLogger)))

	stderr := job.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	alertWriter := alerts.NewWriter(stderr, settings.NoColor)

	if job.Mode == skusweep.ModeResolve && job.Resolve != nil && !job.Resolve.DryRun && !job.Resolve.Yes {
		logger.Warn().Msg("Deletions not confirmed with --yes, running as a dry run")
		_ = alertWriter.Write(alerts.New(alerts.LevelWarning, "Deletions not confirmed, running as a dry run").
			WithDetails("re-run with --yes to delete"))
	}

	ctx = logging.WithLogger(ctx, logger)
	rep, runErr := skusweep.Run(ctx, client, src, opts...)
	if rep == nil {
		// Run never built a reporter, so nothing closed the sink.
		return errors.Join(runErr, reportSink.Close())
	}

	if err := writeSummaries(job.Run, paths.OutDir, rep); err != nil {
		runErr = errors.Join(runErr, err)
	}

	stdout := job.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := output.FormatReport(stdout, rep, format); err != nil {
		runErr = errors.Join(runErr, err)
	}

	logger.Info().
		Str("report", paths.Report).
		Str("log", paths.Log).
		Msg(Describe(rep))

	alert := alerts.ForReport(rep, Describe)
	if runErr != nil {
		alert = alerts.New(alerts.LevelError, Describe(rep)).WithError(runErr)
	} else if job.Mode == skusweep.ModeFind && rep.Summary.Duplicates > 0 {
		alert.WithDetails("next: skusweep resolve --out-dir " + paths.OutDir)
	}
	_ = alertWriter.Write(alert)

	return runErr
}

func openReportSink(mode skusweep.Mode, path string) (report.Sink, error) {
	if mode == skusweep.ModeFind {
		return report.NewCSVSink(path)
	}
	return report.NewJSONLSink(path)
}

func runOptions(job Job, settings application.Settings) []skusweep.Option {
	opts := []skusweep.Option{
		skusweep.WithMode(job.Mode),
		skusweep.WithSkipAccessCheck(job.Run.SkipCheck),
	}

	if workers := firstPositive(job.Run.Workers, settings.Workers); workers > 0 {
		opts = append(opts, skusweep.WithWorkers(workers))
	}
	switch {
	case job.Run.MaxRetries >= 0:
		opts = append(opts, skusweep.WithMaxRetries(job.Run.MaxRetries))
	case settings.MaxRetries > 0:
		opts = append(opts, skusweep.WithMaxRetries(settings.MaxRetries))
	}
	if timeout := job.Run.Timeout; timeout > 0 {
		opts = append(opts, skusweep.WithTimeout(timeout))
	} else if settings.Timeout > 0 {
		opts = append(opts, skusweep.WithTimeout(settings.Timeout))
	}

	if job.Mode == skusweep.ModeResolve && job.Resolve != nil {
		dryRun := job.Resolve.DryRun || !job.Resolve.Yes
		opts = append(opts,
			skusweep.WithDryRun(dryRun),
			skusweep.WithDeleteConcurrency(max(job.Resolve.Concurrency, 1)),
		)
	}
	return opts
}

func writeSummaries(flags *RunFlags, outDir string, rep *report.Report) error {
	var errs []error
	if flags.SummaryMarkdown {
		errs = append(errs, report.SaveMarkdown(filepath.Join(outDir, constants.SummaryMarkdownFile), rep))
	}
	if flags.SummaryYAML {
		errs = append(errs, report.SaveYAML(filepath.Join(outDir, constants.SummaryYAMLFile), rep))
	}
	return errors.Join(errs...)
}

// Describe returns a one-line summary of a report for terminal output.
func Describe(rep *report.Report) string {
	s := rep.Summary
	if rep.Mode == skusweep.ModeFind.String() {
		return fmt.Sprintf("%d SKUs checked, %d duplicated", s.Identifiers, s.Duplicates)
	}
	if rep.DryRun {
		return fmt.Sprintf("%d SKUs checked, %d duplicated, %d planned", s.Identifiers, s.Duplicates, s.Planned)
	}
	return fmt.Sprintf("%d SKUs checked, %d resolved, %d deleted, %d failed", s.Identifiers, s.Resolved, s.Deleted, s.Failed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
