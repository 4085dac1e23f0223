package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/LordOfPolls/BlackDwarf/internal/observability"
	"github.com/LordOfPolls/BlackDwarf/internal/resolver"
	"github.com/LordOfPolls/BlackDwarf/internal/rewriter"
)

// exportWriter queues create-all writes during a pass and applies them when
// the pass closes it. Deferring the writes keeps them off the files the
// resolver is still reading; a dependency parse never races an __all__
// insertion into the same file.
type exportWriter struct {
	app     *App
	ch      chan resolver.ExportListWrite
	wg      sync.WaitGroup
	applied int
}

func newExportWriter(a *App) *exportWriter {
	w := &exportWriter{app: a, ch: make(chan resolver.ExportListWrite, 16)}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *exportWriter) run() {
	defer w.wg.Done()
	var queued []resolver.ExportListWrite
	for req := range w.ch {
		queued = append(queued, req)
	}
	for _, req := range queued {
		if err := w.apply(context.Background(), req); err != nil {
			slog.Warn("failed to write export list", "path", req.Path, "error", err)
			continue
		}
		w.applied++
		observability.ExportListsWrittenTotal.Inc()
	}
}

func (w *exportWriter) enqueue(req resolver.ExportListWrite) {
	w.ch <- req
}

// Close drains pending writes and reports how many were applied.
func (w *exportWriter) Close() int {
	close(w.ch)
	w.wg.Wait()
	return w.applied
}

// apply re-reads the module before writing: the parse that inferred the
// exports may be stale by the time the write lands, and a module that gained
// an __all__ in the meantime must not get a second one.
func (w *exportWriter) apply(ctx context.Context, req resolver.ExportListWrite) error {
	file, err := w.app.parser.ParseFile(req.Path)
	if err != nil {
		return err
	}
	if file.HasDeclaredAll() {
		slog.Debug("module already declares __all__, skipping", "path", req.Path)
		return nil
	}

	out := rewriter.InsertExportList(file.Source, file.ExportInsertLine(), req.Names)
	formatted, err := w.app.formatter.Format(ctx, out)
	if err != nil {
		slog.Warn("formatter failed, writing unformatted export list", "path", req.Path, "error", err)
		formatted = out
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(req.Path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(req.Path, formatted, mode)
}
