// Package jobs runs analyses in the background on a fixed pool of workers.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/insights"
	"github.com/cnharrison/har-insights/internal/observability"
	"github.com/cnharrison/har-insights/internal/store"
)

var (
	// ErrQueueFull is returned by Submit when every buffer slot is taken
	ErrQueueFull = errors.New("job queue is full")
	// ErrAnalysisTimeout fails a job whose analysis outlived its deadline
	ErrAnalysisTimeout = errors.New("analysis timed out")
)

// Job is a queued analysis
type Job struct {
	ID      string
	Persona insights.Persona
	Data    []byte
}

// Options configures a Queue
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Analyzer  *analyzer.Analyzer
	// Generator is optional; without it jobs finish with an empty insight.
	Generator insights.Generator
	Metrics   *observability.Metrics
	Logger    zerolog.Logger
}

// Queue accepts jobs and processes them with Options.Workers goroutines
type Queue struct {
	store     *store.Store
	generator insights.Generator
	metrics   *observability.Metrics
	logger    zerolog.Logger
	workers   int
	timeout   time.Duration
	jobs      chan Job
	analyze   func([]byte) (*analyzer.Analysis, error)
}

// New creates a queue backed by st
func New(st *store.Store, opts Options) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.New(analyzer.WithLogger(opts.Logger))
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}

	return &Queue{
		store:     st,
		generator: opts.Generator,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "jobs").Logger(),
		workers:   opts.Workers,
		timeout:   opts.Timeout,
		jobs:      make(chan Job, opts.QueueSize),
		analyze:   opts.Analyzer.AnalyzeJSON,
	}
}

// Submit records a queued job and hands it to the workers
func (q *Queue) Submit(ctx context.Context, source string, persona insights.Persona, data []byte) (string, error) {
	id := uuid.NewString()
	rec := store.Record{
		ID:      id,
		Persona: string(persona),
		Status:  store.StatusQueued,
		Source:  source,
	}
	if err := q.store.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("store job: %w", err)
	}

	select {
	case q.jobs <- Job{ID: id, Persona: persona, Data: data}:
	default:
		if err := q.store.SetStatus(ctx, id, store.StatusFailed, ErrQueueFull.Error()); err != nil {
			q.logger.Error().Err(err).Str("job_id", id).Msg("failed to record rejected job")
		}
		q.metrics.JobsTotal.WithLabelValues("rejected").Inc()
		return "", ErrQueueFull
	}

	q.metrics.QueueDepth.Set(float64(len(q.jobs)))
	q.logger.Info().Str("job_id", id).Str("persona", string(persona)).Int("bytes", len(data)).Msg("job queued")
	return id, nil
}

// Depth returns the number of jobs waiting for a worker
func (q *Queue) Depth() int {
	return len(q.jobs)
}

// Run processes jobs until ctx is cancelled
func (q *Queue) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		worker := i
		g.Go(func() error {
			q.logger.Debug().Int("worker", worker).Msg("worker started")
			for {
				select {
				case <-ctx.Done():
					return nil
				case job := <-q.jobs:
					q.metrics.QueueDepth.Set(float64(len(q.jobs)))
					q.process(ctx, job)
				}
			}
		})
	}
	return g.Wait()
}

func (q *Queue) process(ctx context.Context, job Job) {
	logger := q.logger.With().Str("job_id", job.ID).Str("persona", string(job.Persona)).Logger()

	if err := q.store.SetStatus(ctx, job.ID, store.StatusRunning, ""); err != nil {
		logger.Error().Err(err).Msg("failed to mark job running")
		q.metrics.JobsTotal.WithLabelValues(string(store.StatusFailed)).Inc()
		return
	}

	start := time.Now()
	analysis, err := q.analyzeWithTimeout(ctx, job.Data)
	duration := time.Since(start)
	q.metrics.AnalysisDuration.Observe(duration.Seconds())
	if err != nil {
		q.fail(ctx, logger, job.ID, err)
		return
	}
	q.metrics.ObserveAnalysis(analysis)
	logger.Info().
		Int("entries", analysis.Metrics.TotalRequests).
		Int("warnings", len(analysis.Warnings)).
		Dur("duration", duration).
		Msg("analysis finished")

	insight := q.generateInsight(ctx, logger, analysis.Metrics, job.Persona)

	if err := q.store.SaveResult(ctx, job.ID, string(job.Persona), analysis, insight); err != nil {
		logger.Error().Err(err).Msg("failed to save result")
		q.metrics.JobsTotal.WithLabelValues(string(store.StatusFailed)).Inc()
		return
	}
	q.metrics.JobsTotal.WithLabelValues(string(store.StatusDone)).Inc()
}

func (q *Queue) fail(ctx context.Context, logger zerolog.Logger, id string, cause error) {
	logger.Warn().Err(cause).Msg("job failed")
	q.metrics.JobsTotal.WithLabelValues(string(store.StatusFailed)).Inc()

	// Record the failure even when the worker context is already cancelled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := q.store.SetStatus(saveCtx, id, store.StatusFailed, cause.Error()); err != nil {
		logger.Error().Err(err).Msg("failed to mark job failed")
	}
}

// analyzeWithTimeout runs the analysis in its own goroutine. When the deadline
// passes first the goroutine is left to finish and its result is dropped.
func (q *Queue) analyzeWithTimeout(ctx context.Context, data []byte) (*analyzer.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	type result struct {
		analysis *analyzer.Analysis
		err      error
	}
	done := make(chan result, 1)
	go func() {
		a, err := q.analyze(data)
		done <- result{analysis: a, err: err}
	}()

	select {
	case r := <-done:
		return r.analysis, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrAnalysisTimeout
		}
		return nil, ctx.Err()
	}
}

// generateInsight never fails the job; errors leave the insight empty
func (q *Queue) generateInsight(ctx context.Context, logger zerolog.Logger, metrics analyzer.Metrics, persona insights.Persona) string {
	if q.generator == nil {
		return ""
	}
	insight, err := q.generator.Generate(ctx, metrics, persona)
	if err != nil {
		logger.Warn().Err(err).Msg("insight generation failed")
		return ""
	}
	return insight
}
