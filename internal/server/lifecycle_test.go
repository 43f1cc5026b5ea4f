package server_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/server"
)

// blockingService runs until stopped, recording both transitions.
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (s *blockingService) Start() error {
	s.started.Store(true)
	for !s.stopped.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func (s *blockingService) Stop() { s.stopped.Store(true) }

func TestLifecycle_RunStartsAndStopsAll(t *testing.T) {
	lc := server.NewLifecycle(zap.NewNop())
	reaper := &blockingService{}
	listener := &blockingService{}
	lc.Add("session-reaper", reaper)
	lc.Add("http", listener)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return reaper.started.Load() && listener.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, reaper.stopped.Load())
	assert.True(t, listener.stopped.Load())
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	lc := server.NewLifecycle(zap.NewNop())

	var mu sync.Mutex
	var order []string
	record := func(name string) *server.FuncService {
		stopped := make(chan struct{})
		return &server.FuncService{
			StartFn: func() error { <-stopped; return nil },
			StopFn: func() {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				close(stopped)
			},
		}
	}
	lc.Add("database", record("database"))
	lc.Add("http", record("http"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	// The listener must go down before the pool it depends on.
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"http", "database"}, order)
}

func TestLifecycle_ServiceFailureTriggersShutdown(t *testing.T) {
	lc := server.NewLifecycle(zap.NewNop())
	healthy := &blockingService{}
	lc.Add("healthy", healthy)
	lc.Add("broken", &server.FuncService{
		StartFn: func() error { return errors.New("bind: address already in use") },
		StopFn:  func() {},
	})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not react to the failed service")
	}
	assert.True(t, healthy.stopped.Load())
}

func TestFuncService_Delegates(t *testing.T) {
	var started, stopped bool
	svc := &server.FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	require.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
