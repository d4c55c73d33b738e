// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
)

var (
	// ErrClosed is returned by operations on a closed queue.
	ErrClosed = errors.New("queue is closed")

	// ErrUnknownJob is returned when acknowledging a job that is not pending.
	ErrUnknownJob = errors.New("job not pending")
)

const (
	prefixPending = "pending:"
	sequenceKey   = "meta:sequence"
)

// Job is one unit of processing work. It lives in the queue from Enqueue
// until Ack.
type Job struct {
	ID         string    `json:"id"`
	Seq        uint64    `json:"seq"`
	PhotoID    int64     `json:"photo_id"`
	SourcePath string    `json:"source_path"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

func pendingKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixPending, seq))
}

// Queue is a durable FIFO of processing jobs backed by BadgerDB.
//
// Enqueue returns once the job is written. Serve feeds pending jobs to
// Jobs in order, skipping those already handed out and not yet acked.
// Jobs left unacknowledged by a crash are redelivered when the next
// process starts Serve.
type Queue struct {
	db     *badger.DB
	seq    *badger.Sequence
	config Config

	jobs   chan Job
	signal chan struct{}

	inflight sync.Map // seq -> struct{}

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the queue described by cfg.
func Open(cfg Config) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid queue config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open job sequence: %w", err)
	}

	q := &Queue{
		db:     db,
		seq:    seq,
		config: cfg,
		jobs:   make(chan Job, cfg.Buffer),
		signal: make(chan struct{}, 1),
	}

	pending := q.Len()
	metrics.SetQueueDepth(pending)
	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.Path == "").
		Int("pending", pending).
		Msg("Job queue opened")
	return q, nil
}

// Enqueue durably records a job for photoID and wakes the feeder.
func (q *Queue) Enqueue(ctx context.Context, photoID int64, sourcePath string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return Job{}, ErrClosed
	}

	n, err := q.seq.Next()
	if err != nil {
		return Job{}, fmt.Errorf("next job sequence: %w", err)
	}
	job := Job{
		ID:         uuid.NewString(),
		Seq:        n,
		PhotoID:    photoID,
		SourcePath: sourcePath,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return Job{}, fmt.Errorf("marshal job: %w", err)
	}

	if err := q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pendingKey(job.Seq), data)
	}); err != nil {
		return Job{}, fmt.Errorf("write job: %w", err)
	}

	metrics.RecordJobEnqueued()
	q.wake()

	logging.Debug().Str("job_id", job.ID).Int64("photo_id", photoID).Msg("Job enqueued")
	return job, nil
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Jobs returns the channel the feeder delivers jobs on.
func (q *Queue) Jobs() <-chan Job {
	return q.jobs
}

// Serve runs the feeder until ctx is cancelled.
func (q *Queue) Serve(ctx context.Context) error {
	ticker := time.NewTicker(q.config.RescanInterval)
	defer ticker.Stop()

	for {
		if err := q.feed(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrClosed) {
				return err
			}
			logging.Error().Err(err).Msg("Job queue scan failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.signal:
		case <-ticker.C:
		}
	}
}

// feed delivers every pending job not already in flight.
func (q *Queue) feed(ctx context.Context) error {
	pending, err := q.pending(ctx)
	if err != nil {
		return err
	}
	metrics.SetQueueDepth(len(pending))

	for _, job := range pending {
		if _, busy := q.inflight.LoadOrStore(job.Seq, struct{}{}); busy {
			continue
		}
		job.Attempts++
		claimed, err := q.claim(job)
		if err != nil || !claimed {
			q.inflight.Delete(job.Seq)
			if err != nil {
				return err
			}
			continue
		}
		select {
		case q.jobs <- job:
		case <-ctx.Done():
			q.inflight.Delete(job.Seq)
			return ctx.Err()
		}
	}
	return nil
}

// claim records the delivery attempt. It reports false when the job was
// acked after the scan that found it.
func (q *Queue) claim(job Job) (bool, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("marshal job: %w", err)
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false, ErrClosed
	}

	key := pendingKey(job.Seq)
	err = q.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound), errors.Is(err, badger.ErrConflict):
		return false, nil
	default:
		return false, fmt.Errorf("claim job %s: %w", job.ID, err)
	}
}

func (q *Queue) pending(ctx context.Context) ([]Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrClosed
	}

	var jobs []Job
	err := q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var job Job
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &job)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping unreadable job")
				continue
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending jobs: %w", err)
	}
	return jobs, nil
}

// Ack removes a delivered job. Processing outcome does not matter; acked
// jobs are never redelivered.
func (q *Queue) Ack(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	defer q.inflight.Delete(job.Seq)

	key := pendingKey(job.Seq)
	err := q.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUnknownJob
			}
			return err
		}
		return txn.Delete(key)
	})
	if err != nil && !errors.Is(err, ErrUnknownJob) {
		return fmt.Errorf("ack job %s: %w", job.ID, err)
	}
	return err
}

// Len returns the number of unacknowledged jobs.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0
	}

	count := 0
	_ = q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Close releases the sequence and closes BadgerDB, giving up after
// CloseTimeout.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	if err := q.seq.Release(); err != nil {
		logging.Warn().Err(err).Msg("Failed to release job sequence")
	}

	done := make(chan error, 1)
	go func() {
		done <- q.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("Job queue closed")
		return nil
	case <-time.After(q.config.CloseTimeout):
		return fmt.Errorf("badgerdb close timeout after %v", q.config.CloseTimeout)
	}
}
