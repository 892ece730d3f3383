// Package pipeline runs file-based exports for the CLI and the watcher:
// decode an inspection document, generate its report, save it and record
// the outcome.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"hosereport/internal/inspection"
	"hosereport/internal/logging"
	"hosereport/internal/metrics"
	"hosereport/internal/report"
	"hosereport/internal/store"
)

// History records export outcomes.
type History interface {
	Record(ctx context.Context, e *store.Export) error
}

// Runner exports inspection files. History and Metrics are optional.
type Runner struct {
	Generator *report.Generator
	History   History
	Metrics   *metrics.Metrics
	Source    string // recorded as the export source, e.g. "cli"
}

// Result describes a saved report.
type Result struct {
	Path     string
	FileName string
	Document *report.Document
}

// ExportFile reads the inspection document at path and saves its report
// into outDir.
func (r *Runner) ExportFile(ctx context.Context, path, outDir string) (*Result, error) {
	format, ok := inspection.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported file type", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := inspection.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r.Export(ctx, doc, outDir)
}

// Export generates and saves the report for an already decoded document.
func (r *Runner) Export(ctx context.Context, doc *inspection.Document, outDir string) (*Result, error) {
	engine := r.Generator.Engine()
	entry := &store.Export{Source: r.Source, Engine: engine}
	if doc.Header != nil {
		entry.Client = doc.Header.Client
		entry.InspectionDate = doc.Header.InspectionDate
	}

	done := r.Metrics.Begin(r.Source, engine)
	start := time.Now()
	dl := report.DirDownloader{Dir: outDir}
	out, name, err := r.Generator.Export(ctx, doc.Header, doc.Items, dl)
	entry.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		done(0, err)
		entry.Status, entry.Error = store.StatusFailed, err.Error()
		r.record(ctx, entry)
		return nil, err
	}
	done(out.Pages, nil)

	entry.Status = store.StatusOK
	entry.FileName, entry.Items, entry.Pages = name, out.Items, out.Pages
	entry.Bytes, entry.Checksum = len(out.PDF), out.Checksum
	r.record(ctx, entry)

	return &Result{Path: dl.Path(name), FileName: name, Document: out}, nil
}

func (r *Runner) record(ctx context.Context, e *store.Export) {
	if r.History == nil {
		return
	}
	if err := r.History.Record(ctx, e); err != nil {
		logging.StoreWarn("recording export: %v", err)
	}
}
