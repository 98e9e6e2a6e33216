package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type fakeServer struct {
	stopped  chan struct{}
	shutdown atomic.Bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (s *fakeServer) Start() error {
	<-s.stopped
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(_ context.Context) error {
	s.shutdown.Store(true)
	close(s.stopped)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServeUntilDone_WaitsForRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	srv := newFakeServer()

	started := make(chan struct{})
	var finished atomic.Bool
	run := func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		// Simulates a publish still draining after cancellation.
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	}

	go func() {
		<-started
		cancel()
	}()
	serveUntilDone(ctx, cancel, srv, run, time.Second, discardLogger())

	assert.True(t, srv.shutdown.Load(), "server shut down")
	assert.True(t, finished.Load(), "run joined before return")
}

func TestServeUntilDone_RunCompletesFirst(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	srv := newFakeServer()

	var runs atomic.Int32
	run := func(context.Context) error {
		runs.Add(1)
		cancel()
		return nil
	}

	serveUntilDone(ctx, cancel, srv, run, time.Second, discardLogger())

	assert.Equal(t, int32(1), runs.Load())
	assert.True(t, srv.shutdown.Load())
}
