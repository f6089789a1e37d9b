package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docsplice/internal/inject"
	"github.com/dgallion1/docsplice/internal/outline"
	"github.com/dgallion1/docsplice/internal/parser"
	"github.com/dgallion1/docsplice/internal/verify"
)

// Worker processes a single document job.
type Worker struct {
	parserOpts    parser.Options
	injector      *inject.Injector
	shooter       *verify.Shooter
	screenshotDir string
	stats         *PhaseStats
	log           *slog.Logger
}

func NewWorker(opts parser.Options, injector *inject.Injector, shooter *verify.Shooter, screenshotDir string, stats *PhaseStats, log *slog.Logger) *Worker {
	return &Worker{
		parserOpts:    opts,
		injector:      injector,
		shooter:       shooter,
		screenshotDir: screenshotDir,
		stats:         stats,
		log:           log,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()
	defer func() { w.stats.Record(PhaseTotal, time.Since(start)) }()

	// Phase 1: Extract paragraphs
	job.SetStatus(StatusExtracting, "extracting")
	phaseStart := time.Now()
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	paragraphs, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetParagraphs(len(paragraphs))
	w.stats.Record(PhaseExtract, time.Since(phaseStart))
	log.Info("extracted paragraphs", "paragraphs", len(paragraphs))

	// Phase 2: Parse structure
	job.SetStatus(StatusParsing, "parsing")
	phaseStart = time.Now()
	res := outline.Parse(paragraphs)
	job.SetResult(res)
	w.stats.Record(PhaseParse, time.Since(phaseStart))
	for _, warn := range res.Warnings {
		log.Warn("structure warning", "kind", warn.Kind, "line", warn.Line, "text", warn.Text, "message", warn.Message)
	}
	log.Info("parsed outline",
		"pages", len(res.Outline.Pages),
		"sections", res.Outline.SectionCount(),
		"warnings", len(res.Warnings),
	)

	if !job.Inject {
		job.SetStatus(StatusCompleted, "done")
		return
	}
	if w.injector == nil {
		job.AddError("injection requested but no site directory is configured")
		job.SetStatus(StatusFailed, "injecting")
		return
	}

	// Phase 3: Inject into the site template
	job.SetStatus(StatusInjecting, "injecting")
	phaseStart = time.Now()
	reports, err := w.injector.Apply(ctx, res.Outline)
	job.SetReports(reports)
	if err != nil {
		log.Error("injection failed", "error", err)
		job.AddError(fmt.Sprintf("inject: %s", err))
		job.SetStatus(StatusFailed, "injecting")
		return
	}
	w.stats.Record(PhaseInject, time.Since(phaseStart))

	// Phase 4: Screenshots of the pages that changed. Failures are reported
	// but do not fail the job; the pages are already written.
	var written []string
	for _, r := range reports {
		if r.Written {
			written = append(written, r.Page)
		}
	}
	if w.shooter != nil && len(written) > 0 {
		job.SetStatus(StatusInjecting, "screenshots")
		phaseStart = time.Now()
		outDir := filepath.Join(w.screenshotDir, job.ID)
		var paths []string
		err := withRetry(ctx, func() error {
			var err error
			paths, err = w.shooter.Capture(ctx, w.injector.SiteDir(), written, outDir)
			return err
		})
		job.SetScreenshots(paths)
		if err != nil {
			log.Warn("screenshots incomplete", "error", err)
			job.AddError(fmt.Sprintf("screenshot: %s", err))
		}
		w.stats.Record(PhaseShoot, time.Since(phaseStart))
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed", "duration_ms", time.Since(start).Milliseconds())
}
