// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package services

import (
	"context"

	"github.com/thejerf/suture/v4"
)

// ContextServer is anything that runs until its context is cancelled.
// *queue.Queue, *pipeline.Pool and *notify.Dispatcher all qualify.
type ContextServer interface {
	Serve(ctx context.Context) error
}

// QueueFeederService feeds pending jobs from the durable queue to workers.
type QueueFeederService struct {
	queue ContextServer
}

var _ suture.Service = (*QueueFeederService)(nil)

// NewQueueFeederService wraps the queue's feeder loop.
func NewQueueFeederService(q ContextServer) *QueueFeederService {
	return &QueueFeederService{queue: q}
}

// Serve implements suture.Service.
func (s *QueueFeederService) Serve(ctx context.Context) error {
	return s.queue.Serve(ctx)
}

func (s *QueueFeederService) String() string { return "queue-feeder" }

// WorkerPoolService runs the processing workers.
type WorkerPoolService struct {
	pool ContextServer
}

var _ suture.Service = (*WorkerPoolService)(nil)

// NewWorkerPoolService wraps a worker pool.
func NewWorkerPoolService(pool ContextServer) *WorkerPoolService {
	return &WorkerPoolService{pool: pool}
}

// Serve implements suture.Service.
func (s *WorkerPoolService) Serve(ctx context.Context) error {
	return s.pool.Serve(ctx)
}

func (s *WorkerPoolService) String() string { return "worker-pool" }

// DispatcherService delivers notifications from the in-process topic.
type DispatcherService struct {
	dispatcher ContextServer
}

var _ suture.Service = (*DispatcherService)(nil)

// NewDispatcherService wraps the notification dispatcher.
func NewDispatcherService(d ContextServer) *DispatcherService {
	return &DispatcherService{dispatcher: d}
}

// Serve implements suture.Service.
func (s *DispatcherService) Serve(ctx context.Context) error {
	return s.dispatcher.Serve(ctx)
}

func (s *DispatcherService) String() string { return "notification-dispatcher" }
