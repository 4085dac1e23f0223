package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
	"github.com/LordOfPolls/BlackDwarf/internal/history"
	"github.com/LordOfPolls/BlackDwarf/internal/observability"
	"github.com/LordOfPolls/BlackDwarf/internal/resolver"
	"github.com/LordOfPolls/BlackDwarf/internal/rewriter"
)

// FileReport is the outcome of processing one file.
type FileReport struct {
	Path    string
	Changed bool
	// Written is true when the rewritten text reached disk, false in dry
	// runs and on write failures.
	Written      bool
	Wildcards    int
	Replaced     int
	Removed      int
	Kept         int
	Diagnostics  []resolver.Diagnostic
	Diff         string
	ExportWrites int
	Err          error
}

// Summary aggregates one pass over the target.
type Summary struct {
	Root               string
	DryRun             bool
	FilesProcessed     int
	FilesChanged       int
	FilesFailed        int
	WildcardsSeen      int
	WildcardsReplaced  int
	WildcardsRemoved   int
	WildcardsKept      int
	ExportListsWritten int
	DiagnosticCount    int
	WarningCount       int
	Duration           time.Duration
	Reports            []FileReport
}

func (s *Summary) add(r FileReport) {
	s.Reports = append(s.Reports, r)
	s.FilesProcessed++
	if r.Err != nil {
		s.FilesFailed++
	}
	if r.Changed {
		s.FilesChanged++
	}
	s.WildcardsSeen += r.Wildcards
	s.WildcardsReplaced += r.Replaced
	s.WildcardsRemoved += r.Removed
	s.WildcardsKept += r.Kept
	s.DiagnosticCount += len(r.Diagnostics)
	for _, d := range r.Diagnostics {
		if d.Kind.Warning() {
			s.WarningCount++
		}
	}
}

// ExitCode maps the pass onto the process exit status: 2 when any file
// failed to parse, 1 when files failed otherwise or warnings were emitted,
// 0 for a clean pass. Removal notices alone stay at 0.
func (s *Summary) ExitCode() int {
	for _, r := range s.Reports {
		if r.Err != nil && errors.IsCode(r.Err, errors.CodeParseFailure) {
			return 2
		}
	}
	if s.FilesFailed > 0 || s.WarningCount > 0 {
		return 1
	}
	return 0
}

// pass holds the per-run machinery: a resolver whose module cache lives
// exactly as long as the pass, and the writer applying create-all requests.
type pass struct {
	resolver *resolver.Resolver
	writer   *exportWriter
}

func (a *App) newPass() *pass {
	opts := resolver.Options{
		Infer:     a.Opts.Infer,
		CreateAll: a.Opts.CreateAll,
		Module:    a.Opts.Module,
	}
	return &pass{
		resolver: resolver.NewResolver(a.parser, resolver.NewLocator(a.Root), opts),
		writer:   newExportWriter(a),
	}
}

// Run executes one full pass over the configured target.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	files, err := a.ScanTarget()
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "scan_target")
	}
	return a.runFiles(ctx, files), nil
}

// RunFiles processes an explicit batch, used by watch mode after a change
// notification. Files deleted between the event and the run are skipped.
func (a *App) RunFiles(ctx context.Context, paths []string) *Summary {
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		files = append(files, p)
	}
	sortDeepestFirst(files)
	return a.runFiles(ctx, files)
}

func (a *App) runFiles(ctx context.Context, files []string) *Summary {
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("target", a.Target),
		attribute.Int("files", len(files)),
	))
	defer span.End()

	run := history.NewRun(a.Target, a.Opts.DryRun)
	summary := &Summary{Root: a.Target, DryRun: a.Opts.DryRun}
	p := a.newPass()

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		summary.add(a.processFile(ctx, path, p))
	}

	summary.ExportListsWritten = p.writer.Close()
	summary.Duration = time.Since(run.StartedAt)

	if a.history != nil {
		run.FilesProcessed = summary.FilesProcessed
		run.FilesChanged = summary.FilesChanged
		run.FilesFailed = summary.FilesFailed
		run.WildcardsSeen = summary.WildcardsSeen
		run.WildcardsReplaced = summary.WildcardsReplaced
		run.WildcardsRemoved = summary.WildcardsRemoved
		run.WildcardsKept = summary.WildcardsKept
		run.ExportListsWritten = summary.ExportListsWritten
		run.DiagnosticCount = summary.DiagnosticCount
		run.Duration = summary.Duration
		if err := a.history.SaveRun(run); err != nil {
			slog.Warn("failed to save run history", "error", err)
		}
	}
	return summary
}

func (a *App) processFile(ctx context.Context, path string, p *pass) FileReport {
	ctx, span := observability.Tracer.Start(ctx, "app.processFile",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ProcessDuration.Observe(time.Since(start).Seconds())
	}()
	observability.FilesProcessedTotal.Inc()

	report := FileReport{Path: path}

	parseStart := time.Now()
	file, err := a.parser.ParseFile(path)
	observability.ParsingDuration.Observe(time.Since(parseStart).Seconds())
	if err != nil {
		observability.FilesFailedTotal.Inc()
		report.Err = err
		return report
	}

	resolveStart := time.Now()
	m, err := p.resolver.Resolve(file)
	observability.ResolveDuration.Observe(time.Since(resolveStart).Seconds())
	if err != nil {
		observability.FilesFailedTotal.Inc()
		report.Err = err
		return report
	}

	result := rewriter.Rewrite(m)
	report.Changed = result.Changed
	report.Diagnostics = result.Diagnostics
	report.Wildcards = len(m.Resolutions)
	report.ExportWrites = len(m.ExportWrites)

	observability.WildcardsSeenTotal.Add(float64(len(m.Resolutions)))
	for _, d := range result.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}
	for _, res := range m.Resolutions {
		switch res.Outcome {
		case resolver.OutcomeReplace:
			report.Replaced++
			observability.WildcardOutcomesTotal.WithLabelValues("replace").Inc()
		case resolver.OutcomeRemove:
			report.Removed++
			observability.WildcardOutcomesTotal.WithLabelValues("remove").Inc()
		default:
			report.Kept++
			observability.WildcardOutcomesTotal.WithLabelValues("keep").Inc()
		}
	}

	if !a.Opts.DryRun {
		for _, w := range m.ExportWrites {
			p.writer.enqueue(w)
		}
	}

	if !result.Changed {
		return report
	}
	observability.FilesChangedTotal.Inc()

	if a.Opts.DryRun {
		report.Diff = renderDiff(path, result.Original, result.Output)
		return report
	}

	formatStart := time.Now()
	out, err := a.formatter.Format(ctx, result.Output)
	observability.FormatDuration.Observe(time.Since(formatStart).Seconds())
	if err != nil {
		slog.Warn("formatter failed, writing unformatted output", "path", path, "error", err)
		out = result.Output
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		observability.FilesFailedTotal.Inc()
		report.Err = errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "write rewritten file"), errors.CtxPath, path)
		return report
	}
	report.Written = true

	slog.Debug("rewrote file",
		"path", path,
		"replaced", report.Replaced,
		"removed", report.Removed,
		"kept", report.Kept,
	)
	return report
}
