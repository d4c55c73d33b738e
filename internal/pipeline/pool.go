// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/queue"
)

// JobSource delivers jobs and accepts acknowledgements. *queue.Queue
// implements it.
type JobSource interface {
	Jobs() <-chan queue.Job
	Ack(job queue.Job) error
}

// Pool runs a fixed number of workers over a JobSource.
type Pool struct {
	source    JobSource
	processor *Processor
	workers   int
}

// NewPool creates a Pool. workers <= 0 uses one worker per CPU.
func NewPool(source JobSource, processor *Processor, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{source: source, processor: processor, workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Serve runs the workers until ctx is cancelled, then waits for in-progress
// jobs to return.
func (p *Pool) Serve(ctx context.Context) error {
	logging.Info().Int("workers", p.workers).Msg("Worker pool started")

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			p.work(ctx, worker)
		}(i)
	}
	wg.Wait()

	logging.Info().Msg("Worker pool stopped")
	return ctx.Err()
}

func (p *Pool) work(ctx context.Context, worker int) {
	jobs := p.source.Jobs()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if p.processor.Process(ctx, job) == OutcomeAborted {
				continue
			}
			if err := p.source.Ack(job); err != nil {
				logging.Warn().Err(err).Int("worker", worker).Str("job_id", job.ID).Msg("Failed to ack job")
			}
		}
	}
}
