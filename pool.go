// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sassoftware/viya-ingest-xtract/logger"
	"golang.org/x/sync/errgroup"
)

// Job is a single document submitted for extraction.
type Job struct {
	ID   string
	Path string
}

// Element is one extracted item (text block, table, chart or image).
type Element struct {
	DocumentType string
	Content      string
	Metadata     map[string]any
}

// Result holds the outcome of one job. Err is set only in best-effort mode.
type Result struct {
	Index    int
	Job      Job
	Elements []Element
	Err      error
}

// ExtractFunc performs the extraction of a single job using the configured
// external services.
type ExtractFunc func(ctx context.Context, job Job, endpoints *EndpointConfig) ([]Element, error)

// FailurePolicy decides what a job failure does to the rest of the run.
// Returning a non-nil error aborts the run.
type FailurePolicy interface {
	HandleFailure(job Job, err error) error
}

// StrictPolicy aborts the run on the first failed job.
type StrictPolicy struct{}

func (StrictPolicy) HandleFailure(job Job, err error) error {
	return fmt.Errorf("extraction failed for job %s: %w", job.ID, err)
}

// BestEffortPolicy records the failure on the job's Result and keeps going.
type BestEffortPolicy struct{}

func (BestEffortPolicy) HandleFailure(job Job, err error) error {
	logger.Debug("BestEffortPolicy: job failed, skipping", "job", job.ID, "err", err, true)
	return nil
}

// Metrics receives job lifecycle events from a Pool.
type Metrics interface {
	JobStarted()
	JobFinished(d time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) JobStarted()                      {}
func (nopMetrics) JobFinished(time.Duration, error) {}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithMetrics reports job events to m.
func WithMetrics(m Metrics) PoolOption {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

// Pool runs extraction jobs with the concurrency and failure policy of a
// validated WorkerPoolConfig.
type Pool struct {
	cfg     WorkerPoolConfig
	policy  FailurePolicy
	metrics Metrics
}

// NewPool validates cfg and creates a pool. An invalid config never
// produces a pool.
func NewPool(cfg *WorkerPoolConfig, opts ...PoolOption) (*Pool, error) {
	if cfg == nil {
		return nil, errors.New("nil worker pool config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid worker pool config: %w", err)
	}

	var policy FailurePolicy = BestEffortPolicy{}
	if cfg.RaiseOnFailure {
		policy = StrictPolicy{}
	}

	p := &Pool{
		cfg:     *cfg,
		policy:  policy,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}

	logger.Debug(fmt.Sprintf("Pool initialized: raise_on_failure=%v, max_queue_size=%d, worker_count=%d, endpoints=%d",
		cfg.RaiseOnFailure, cfg.MaxQueueSize, cfg.WorkerCount, len(cfg.EndpointConfig.Endpoints())), true)
	return p, nil
}

// Config returns a copy of the pool's configuration.
func (p *Pool) Config() WorkerPoolConfig {
	return p.cfg
}

// Run extracts every job and returns the results in submission order.
// At most MaxQueueSize jobs wait in the queue and WorkerCount run at once.
// With RaiseOnFailure the first failure cancels the run and is returned.
func (p *Pool) Run(ctx context.Context, jobs []Job, fn ExtractFunc) ([]Result, error) {
	logger.Debug(fmt.Sprintf("Starting run: jobs=%d", len(jobs)), true)
	if len(jobs) == 0 {
		return nil, nil
	}

	results := make([]Result, len(jobs))
	queue := make(chan int, p.cfg.MaxQueueSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		return p.feedJobs(gctx, len(jobs), queue)
	})

	numWorkers := min(p.cfg.WorkerCount, len(jobs))
	logger.Debug(fmt.Sprintf("Spawning workers: num_workers=%d", numWorkers), true)
	for w := 1; w <= numWorkers; w++ {
		w := w
		g.Go(func() error {
			return p.work(gctx, w, jobs, queue, results, fn)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Debug(fmt.Sprintf("Run aborted: err=%v", err), true)
		return nil, err
	}
	logger.Debug(fmt.Sprintf("Run completed: jobs=%d", len(jobs)), true)
	return results, nil
}

func (p *Pool) work(ctx context.Context, id int, jobs []Job, queue <-chan int, results []Result, fn ExtractFunc) error {
	logger.Debug(fmt.Sprintf("Worker started: id=%d", id), true)
	for i := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := jobs[i]

		p.metrics.JobStarted()
		start := time.Now()
		elements, err := fn(ctx, job, p.cfg.EndpointConfig)
		p.metrics.JobFinished(time.Since(start), err)

		results[i] = Result{Index: i, Job: job, Elements: elements, Err: err}
		if err != nil {
			logger.Debug(fmt.Sprintf("Worker: job error: worker_id=%d job=%s err=%v", id, job.ID, err), true)
			if ferr := p.policy.HandleFailure(job, err); ferr != nil {
				return ferr
			}
			continue
		}
		logger.Debug(fmt.Sprintf("Worker: job extracted: worker_id=%d job=%s elements=%d", id, job.ID, len(elements)), true)
	}
	logger.Debug(fmt.Sprintf("Worker finished: id=%d", id), true)
	return nil
}

func (p *Pool) feedJobs(ctx context.Context, total int, queue chan<- int) error {
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled while feeding jobs", true)
			return ctx.Err()
		case queue <- i:
		}
	}
	logger.Debug(fmt.Sprintf("All jobs queued: total=%d", total), true)
	return nil
}
