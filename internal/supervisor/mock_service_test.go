// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

var errScripted = errors.New("scripted failure")

// MockService is a suture.Service whose first failures runs return
// errScripted before it settles into blocking on ctx.
type MockService struct {
	name     string
	failures atomic.Int32
	exitErr  atomic.Pointer[error]

	starts atomic.Int32
	stops  atomic.Int32
}

func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

func (m *MockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.failures.Add(-1) >= 0 {
		return errScripted
	}
	if p := m.exitErr.Load(); p != nil {
		return *p
	}
	<-ctx.Done()
	return ctx.Err()
}

// SetError makes every later Serve return err at once.
func (m *MockService) SetError(err error) { m.exitErr.Store(&err) }

// SetFailCount makes the next n runs fail.
func (m *MockService) SetFailCount(n int) { m.failures.Store(int32(n)) }

func (m *MockService) StartCount() int32 { return m.starts.Load() }
func (m *MockService) StopCount() int32  { return m.stops.Load() }
func (m *MockService) String() string    { return m.name }
