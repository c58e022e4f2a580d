package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docvoice/internal/script"
	"github.com/dgallion1/docvoice/internal/source"
)

// Orchestrator runs narration jobs from a bounded queue. Serve mode
// enqueues uploaded documents here; workers convert, parse, resolve
// and synthesize them while clients poll the job store.
type Orchestrator struct {
	store        *JobStore
	processor    *Processor
	defaultVoice string
	planOpts     PlanOptions
	logger       *slog.Logger

	queue chan *Job
}

func NewOrchestrator(store *JobStore, processor *Processor, defaultVoice string, planOpts PlanOptions, queueSize int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:        store,
		processor:    processor,
		defaultVoice: defaultVoice,
		planOpts:     planOpts,
		logger:       logger,
		queue:        make(chan *Job, queueSize),
	}
}

// Enqueue registers the job and queues it for processing. It fails
// without blocking when the queue is full.
func (o *Orchestrator) Enqueue(job *Job) error {
	o.store.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue full")
		return fmt.Errorf("job queue is full")
	}
}

// Start launches the worker pool and the job store cleanup loop. It
// returns immediately; workers stop when ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go func(id int) {
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-o.queue:
					o.process(ctx, job)
				}
			}
		}(i)
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.store.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	logger := o.logger.With("job_id", job.ID, "filename", job.Filename)
	logger.Info("job started")

	job.SetStatus(StatusConverting, "converting document")
	conv, err := source.ForFile(job.Filename)
	if err != nil {
		o.fail(job, logger, err)
		return
	}
	markdown, err := conv.Convert(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		o.fail(job, logger, fmt.Errorf("convert: %w", err))
		return
	}
	job.DropFileData()

	job.SetStatus(StatusParsing, "parsing script")
	doc := script.Parse(markdown)
	if len(doc.Sections) > 0 {
		job.SetTitle(doc.Sections[0].Title)
	}
	script.Resolve(doc, o.defaultVoice)

	plan := BuildPlan(doc, o.planOpts, logger)
	job.SetTotalSections(len(plan.Outputs))

	job.SetStatus(StatusSynthesizing, "synthesizing sections")
	proc := *o.processor
	proc.OnOutput = func(out Output, err error) {
		job.RecordOutput(out.Skip, err)
		if err != nil {
			job.AddError(fmt.Sprintf("%s: %v", out.Title, err))
		}
	}
	report := proc.Run(ctx, plan)

	switch {
	case report.Failed > 0 && report.Processed+report.Skipped > 0:
		job.SetStatus(StatusPartial, "done with failures")
	case report.Failed > 0:
		job.SetStatus(StatusFailed, "all sections failed")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	logger.Info("job finished",
		"status", job.Snapshot().Status,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed)
}

func (o *Orchestrator) fail(job *Job, logger *slog.Logger, err error) {
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, "error")
	logger.Error("job failed", "error", err)
}
