package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsplice/internal/config"
	"github.com/dgallion1/docsplice/internal/inject"
	"github.com/dgallion1/docsplice/internal/parser"
	"github.com/dgallion1/docsplice/internal/verify"
)

// Orchestrator manages the document pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	injector *inject.Injector
	shooter  *verify.Shooter
	stats    *PhaseStats
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. injector and shooter may be nil, which
// disables injection and screenshots respectively.
func NewOrchestrator(cfg config.Config, injector *inject.Injector, shooter *verify.Shooter, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		injector: injector,
		shooter:  shooter,
		stats:    NewPhaseStats(cfg.JobTTL),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(opts, o.injector, o.shooter, o.cfg.ScreenshotDir, o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("evicted expired jobs", "count", n)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	if job.Inject && o.injector == nil {
		return fmt.Errorf("injection is not enabled on this server")
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// JobCount returns the number of jobs still held in memory.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}

// Stats returns the per-phase duration stats.
func (o *Orchestrator) Stats() *PhaseStats {
	return o.stats
}

// InjectionEnabled reports whether jobs may request injection.
func (o *Orchestrator) InjectionEnabled() bool {
	return o.injector != nil
}

// ParserOptions returns the extraction options used by workers.
func (o *Orchestrator) ParserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
}
