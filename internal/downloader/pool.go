package downloader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"saafetch/pkg/fetcher"
	"saafetch/pkg/logger"
)

// TargetFetcher runs the fetch protocol for one target
type TargetFetcher interface {
	Fetch(ctx context.Context, target fetcher.FetchTarget, skipIfExists bool) fetcher.Result
}

// Job is one target and its position in the batch
type Job struct {
	Index  int
	Target fetcher.FetchTarget
}

// JobResult is a fetch result tagged with its position in the batch
type JobResult struct {
	Index  int
	Result fetcher.Result
}

// WorkerPool runs fetches concurrently over a bounded set of workers.
// Failures are carried in results and never stop other workers.
type WorkerPool struct {
	numWorkers   int
	fetcher      TargetFetcher
	skipExisting bool
	logger       logger.Logger
}

// NewWorkerPool creates a new worker pool. numWorkers <= 0 starts one
// worker per target.
func NewWorkerPool(numWorkers int, f TargetFetcher, skipExisting bool, log logger.Logger) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool{
		numWorkers:   numWorkers,
		fetcher:      f,
		skipExisting: skipExisting,
		logger:       log,
	}
}

// Workers returns how many workers a batch of n targets gets
func (wp *WorkerPool) Workers(n int) int {
	if wp.numWorkers <= 0 || wp.numWorkers > n {
		return n
	}
	return wp.numWorkers
}

// Run fetches every target and returns the results in input order. It
// returns only after every target has reached a terminal outcome. onResult,
// if set, is called from the calling goroutine as each result arrives.
func (wp *WorkerPool) Run(ctx context.Context, targets []fetcher.FetchTarget, onResult func(fetcher.Result)) []fetcher.Result {
	results := make([]fetcher.Result, len(targets))
	if len(targets) == 0 {
		return results
	}

	numWorkers := wp.Workers(len(targets))
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": numWorkers,
		"targets":     len(targets),
	})

	jobQueue := make(chan Job, len(targets))
	for i, t := range targets {
		jobQueue <- Job{Index: i, Target: t}
	}
	close(jobQueue)

	resultQueue := make(chan JobResult, len(targets))

	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		id := i
		g.Go(func() error {
			return wp.worker(ctx, id, jobQueue, resultQueue)
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(resultQueue)
	}()

	for jr := range resultQueue {
		results[jr.Index] = jr.Result
		if onResult != nil {
			onResult(jr.Result)
		}
	}

	if waitErr != nil {
		wp.logger.WithError(waitErr).Warn("Worker pool cancelled")
	}
	wp.logger.Debug("Worker pool stopped")
	return results
}

// worker drains the job queue. A cancelled context does not skip jobs:
// the fetcher turns them into Abandoned results right away. The context
// error is returned once the queue is drained.
func (wp *WorkerPool) worker(ctx context.Context, id int, jobs <-chan Job, results chan<- JobResult) error {
	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range jobs {
		res := wp.fetcher.Fetch(ctx, job.Target, wp.skipExisting)
		results <- JobResult{Index: job.Index, Result: res}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue drained", map[string]interface{}{
		"worker_id": id,
	})
	return ctx.Err()
}
