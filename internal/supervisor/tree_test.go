// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*MockService)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitStarted(t *testing.T, svc *MockService, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.StartCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("%s started %d times, want at least %d", svc, svc.StartCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := NewMockService("queue-feeder")
	messaging := NewMockService("worker-pool")
	api := NewMockService("http-server")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*MockService{data, messaging, api} {
		waitStarted(t, svc, 1)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	if data.StopCount() < 1 || api.StopCount() < 1 {
		t.Error("services were not stopped")
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("worker-pool")
	failing.SetFailCount(2)
	stable := NewMockService("http-server")
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tree.ServeBackground(ctx)

	waitStarted(t, failing, 3)
	if stable.StartCount() != 1 {
		t.Errorf("stable service restarted: %d starts", stable.StartCount())
	}
}

func TestSupervisorTree_AddUnknownLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{})
	if _, err := tree.Add(Layer("storage-layer"), NewMockService("x")); err == nil {
		t.Fatal("Add to unknown layer should fail")
	}
	if _, err := tree.Add(LayerAPI, NewMockService("http-server")); err != nil {
		t.Fatalf("Add(LayerAPI) = %v", err)
	}
}

func TestNewSupervisorTree_RequiresLogger(t *testing.T) {
	if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestMockService(t *testing.T) {
	svc := NewMockService("mock")
	svc.SetError(errors.New("boom"))
	if err := svc.Serve(context.Background()); err == nil || err.Error() != "boom" {
		t.Errorf("Serve = %v, want boom", err)
	}
	if svc.String() != "mock" {
		t.Errorf("String() = %q", svc.String())
	}
}
