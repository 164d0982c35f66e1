// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// stepLoop is a RenderLoop that performs exactly one iteration (drain, then
// poll until empty) per step call, giving tests control over when the
// worker applies queued work.
type stepLoop struct {
	steps  chan chan []*Message
	exited chan struct{}
}

func newStepLoop() *stepLoop {
	return &stepLoop{
		steps:  make(chan chan []*Message),
		exited: make(chan struct{}),
	}
}

func (x *stepLoop) Run(src MessageSource) {
	defer close(x.exited)
	for reply := range x.steps {
		src.DrainPendingActions()
		var (
			out      []*Message
			shutdown bool
		)
		for {
			m, ok := src.PollNextMessage()
			if !ok {
				break
			}
			out = append(out, m)
			if m.Kind() == KindApplicationShutdown {
				shutdown = true
			}
		}
		reply <- out
		if shutdown {
			return
		}
	}
}

func (x *stepLoop) step(t *testing.T) []*Message {
	t.Helper()
	reply := make(chan []*Message, 1)
	select {
	case x.steps <- reply:
	case <-x.exited:
		return nil
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the render loop to accept a step")
	}
	select {
	case out := <-reply:
		return out
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the render loop to complete a step")
		return nil
	}
}

// stepUntilShutdown steps until KindApplicationShutdown is observed,
// returning every message seen along the way.
func (x *stepLoop) stepUntilShutdown(t *testing.T) []*Message {
	t.Helper()
	var all []*Message
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		out := x.step(t)
		all = append(all, out...)
		if len(out) != 0 && out[len(out)-1].Kind() == KindApplicationShutdown {
			return all
		}
		select {
		case <-x.exited:
			return all
		default:
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for shutdown")
	return nil
}

// spinLoop is a RenderLoop that iterates continuously, recording every
// message, until it observes KindApplicationShutdown.
type spinLoop struct {
	mu       sync.Mutex
	messages []*Message
}

func (x *spinLoop) Run(src MessageSource) {
	for {
		src.DrainPendingActions()
		for {
			m, ok := src.PollNextMessage()
			if !ok {
				break
			}
			x.mu.Lock()
			x.messages = append(x.messages, m)
			x.mu.Unlock()
			if m.Kind() == KindApplicationShutdown {
				return
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func (x *spinLoop) snapshot() []*Message {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]*Message(nil), x.messages...)
}

func kindsOf(messages []*Message) []Kind {
	kinds := make([]Kind, 0, len(messages))
	for _, m := range messages {
		kinds = append(kinds, m.Kind())
	}
	return kinds
}

func countKind(messages []*Message, kind Kind) (n int) {
	for _, m := range messages {
		if m.Kind() == kind {
			n++
		}
	}
	return
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

// newTestWorker constructs a started worker running loop, registering a
// cleanup that joins it.
func newTestWorker(t *testing.T, loop RenderLoop, opts ...Option) *Worker {
	t.Helper()
	w := newUnstartedTestWorker(t, loop, opts...)
	require.NoError(t, w.Start())
	return w
}

// newUnstartedTestWorker constructs a worker that is not yet started,
// registering a cleanup that joins it, if it was started.
func newUnstartedTestWorker(t *testing.T, loop RenderLoop, opts ...Option) *Worker {
	t.Helper()
	w, err := NewWorker(loop, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		switch w.State() {
		case StateExited:
			return
		case StateNotStarted:
			w.RequestExitAndWait()
			return
		}
		go w.RequestExitAndWait()
		if x, ok := loop.(*stepLoop); ok {
			x.stepUntilShutdown(t)
		}
		select {
		case <-w.Done():
		case <-time.After(testTimeout):
			t.Error("worker did not exit")
		}
	})
	return w
}

func waitDone(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the worker to exit")
	}
}
