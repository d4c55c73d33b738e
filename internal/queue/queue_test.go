// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package queue

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/eventsnap/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func testConfig(path string) Config {
	return Config{
		Path:           path,
		RescanInterval: 20 * time.Millisecond,
		CloseTimeout:   5 * time.Second,
	}
}

func openQueue(t *testing.T, path string) *Queue {
	t.Helper()
	q, err := Open(testConfig(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return q
}

func serve(t *testing.T, q *Queue) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Serve(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func receive(t *testing.T, q *Queue) Job {
	t.Helper()
	select {
	case job := <-q.Jobs():
		return job
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
		return Job{}
	}
}

func TestQueue_DeliversInOrderAndAcks(t *testing.T) {
	q := openQueue(t, "")
	defer q.Close()
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		job, err := q.Enqueue(ctx, id, "originals/x.jpg")
		if err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
		if job.ID == "" || job.PhotoID != id || job.EnqueuedAt.IsZero() {
			t.Errorf("Enqueue() = %+v", job)
		}
	}
	if n := q.Len(); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}

	stop := serve(t, q)
	defer stop()

	for want := int64(1); want <= 3; want++ {
		job := receive(t, q)
		if job.PhotoID != want {
			t.Fatalf("received photo %d, want %d", job.PhotoID, want)
		}
		if job.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", job.Attempts)
		}
		if err := q.Ack(job); err != nil {
			t.Fatalf("Ack() error = %v", err)
		}
	}
	if n := q.Len(); n != 0 {
		t.Errorf("Len() after acks = %d, want 0", n)
	}
}

func TestQueue_InFlightNotRedelivered(t *testing.T) {
	q := openQueue(t, "")
	defer q.Close()

	stop := serve(t, q)
	defer stop()

	if _, err := q.Enqueue(context.Background(), 7, "originals/a.jpg"); err != nil {
		t.Fatal(err)
	}
	job := receive(t, q)

	// Several rescans pass while the job is held unacknowledged.
	select {
	case dup := <-q.Jobs():
		t.Fatalf("job redelivered while in flight: %+v", dup)
	case <-time.After(150 * time.Millisecond):
	}

	if err := q.Ack(job); err != nil {
		t.Fatal(err)
	}
	select {
	case dup := <-q.Jobs():
		t.Fatalf("job delivered after ack: %+v", dup)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestQueue_RedeliversAfterRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	q := openQueue(t, dir)
	if _, err := q.Enqueue(ctx, 1, "originals/1.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue(ctx, 2, "originals/2.jpg"); err != nil {
		t.Fatal(err)
	}

	stop := serve(t, q)
	first := receive(t, q) // delivered, never acked: simulates a crash mid-job
	stop()
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	q = openQueue(t, dir)
	defer q.Close()
	if n := q.Len(); n != 2 {
		t.Fatalf("Len() after restart = %d, want 2", n)
	}

	stop = serve(t, q)
	defer stop()

	again := receive(t, q)
	if again.ID != first.ID {
		t.Fatalf("first redelivered job = %s, want %s", again.ID, first.ID)
	}
	if again.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", again.Attempts)
	}
	second := receive(t, q)
	if second.PhotoID != 2 {
		t.Errorf("second job photo = %d, want 2", second.PhotoID)
	}

	// New jobs continue after the recovered ones.
	next, err := q.Enqueue(ctx, 3, "originals/3.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if next.Seq <= second.Seq {
		t.Errorf("sequence went backwards: %d after %d", next.Seq, second.Seq)
	}
}

func TestQueue_AckUnknown(t *testing.T) {
	q := openQueue(t, "")
	defer q.Close()

	if err := q.Ack(Job{ID: "nope", Seq: 999}); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("Ack() error = %v, want ErrUnknownJob", err)
	}
}

func TestQueue_Closed(t *testing.T) {
	q := openQueue(t, "")
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := q.Enqueue(context.Background(), 1, "originals/a.jpg"); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue() error = %v, want ErrClosed", err)
	}
	if err := q.Serve(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Serve() error = %v, want ErrClosed", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative buffer", func(c *Config) { c.Buffer = -1 }, "Buffer"},
		{"fast rescan", func(c *Config) { c.RescanInterval = time.Millisecond }, "RescanInterval"},
		{"no close timeout", func(c *Config) { c.CloseTimeout = 0 }, "CloseTimeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("Validate() error = %v, want field %s", err, tt.field)
			}
		})
	}
}
