// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

type (
	// RenderLoop is the external render loop, which is run by a Worker for
	// its entire lifetime. Run must call MessageSource.DrainPendingActions
	// then MessageSource.PollNextMessage until empty, once per iteration, and
	// must return after it observes KindApplicationShutdown.
	RenderLoop interface {
		Run(src MessageSource)
	}

	// RenderLoopFunc adapts a plain function to the RenderLoop interface.
	RenderLoopFunc func(src MessageSource)

	// MessageSource is the interface a RenderLoop uses to pull work and
	// messages. Both methods must only be called from within the render
	// loop, i.e. on the worker goroutine.
	MessageSource interface {
		// DrainPendingActions runs every action queued as of the call.
		DrainPendingActions()
		// PollNextMessage returns the oldest queued message, or false if
		// there are none. It never blocks.
		PollNextMessage() (*Message, bool)
	}

	// Worker owns a goroutine, locked to its OS thread, that runs a
	// RenderLoop, along with the queues that feed it.
	//
	// Lifecycle hooks may be called from any goroutine, at any time,
	// including before Start. Each hook is applied later, in order, on the
	// worker goroutine, when the render loop drains pending actions.
	Worker struct {
		// Prevent copying
		_ [0]func()

		loop        RenderLoop
		source      MessageSource
		actions     *ActionQueue
		messages    *MessageQueue
		visibility  *VisibilityTracker
		logger      *logiface.Logger[logiface.Event]
		metrics     *Metrics
		dropLimiter *catrate.Limiter

		// done is closed exactly once, as the last act of the worker
		done chan struct{}

		name        string
		goroutineID atomic.Uint64
		state       workerState
	}

	// messageAction is the Action used to push a message from any goroutine.
	// The message is constructed when the action runs, so ids follow the
	// order the render loop observes.
	messageAction struct {
		worker *Worker
		kind   Kind
	}
)

var (
	_ RenderLoop    = RenderLoopFunc(nil)
	_ MessageSource = (*Worker)(nil)
)

// Run implements RenderLoop.
func (x RenderLoopFunc) Run(src MessageSource) { x(src) }

func (x messageAction) Run() {
	x.worker.queueMessage(NewMessage(x.kind))
}

// NewWorker constructs a Worker, in StateNotStarted, that will run loop once
// started. The worker itself is passed to loop as the MessageSource.
func NewWorker(loop RenderLoop, opts ...Option) (*Worker, error) {
	if loop == nil {
		return nil, ErrInvalidArgument
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	name := cfg.name
	if name == `` {
		name = `surfacebridge-` + uuid.NewString()
	}

	w := &Worker{
		loop:        loop,
		actions:     NewActionQueue(),
		messages:    NewMessageQueue(),
		logger:      cfg.logger.Clone().Str(`worker`, name).Logger(),
		metrics:     cfg.metrics,
		dropLimiter: cfg.dropLimiter,
		done:        make(chan struct{}),
		name:        name,
	}
	w.source = w

	w.actions.logger = w.logger
	w.actions.metrics = w.metrics
	w.messages.metrics = w.metrics
	w.visibility = NewVisibilityTracker(w.messages)
	w.visibility.metrics = w.metrics

	return w, nil
}

// Name returns the name used to identify the worker in logs.
func (w *Worker) Name() string {
	return w.name
}

// State returns the current worker state.
func (w *Worker) State() WorkerState {
	return w.state.Load()
}

// Done returns a channel that is closed once the worker reaches
// StateExited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Start spawns the worker goroutine, which runs the render loop. It is only
// valid in StateNotStarted, returning ErrAlreadyStarted or ErrWorkerExited
// otherwise.
func (w *Worker) Start() error {
	if !w.state.TryTransition(StateNotStarted, StateRunning) {
		if w.state.Load() == StateExited {
			return ErrWorkerExited
		}
		return ErrAlreadyStarted
	}

	w.metrics.workerStarted()

	go w.run()

	return nil
}

// run is the worker goroutine.
func (w *Worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.goroutineID.Store(getGoroutineID())

	defer w.exit()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Err().
				Err(PanicError{Value: r}).
				Log(`render loop panicked`)
		}
	}()

	w.logger.Info().
		Int(`thread`, osThreadID()).
		Log(`worker started`)

	w.loop.Run(w.source)
}

// exit discards both queues, then signals any waiters. It must only be
// called by the worker goroutine.
func (w *Worker) exit() {
	w.state.Store(StateExited)

	dropped := w.actions.Clear()
	discarded := w.messages.Clear()

	w.goroutineID.Store(0)
	w.metrics.workerStopped()

	w.logger.Info().
		Int(`dropped_actions`, dropped).
		Int(`discarded_messages`, discarded).
		Log(`worker exited`)

	close(w.done)
}

// RequestExitAndWait queues a KindApplicationShutdown message, behind any
// actions already queued, then blocks until the worker has exited. It is
// idempotent, and returns immediately if the worker has already exited. A
// worker that was never started exits immediately.
//
// Called from the worker goroutine (e.g. by an action), the exit is
// requested but not waited for, as that would never complete.
//
// WARNING: The wait is unbounded, and relies on the render loop returning.
func (w *Worker) RequestExitAndWait() {
	_ = w.Shutdown(context.Background())
}

// Shutdown behaves like RequestExitAndWait, except the wait is abandoned if
// ctx is done, returning ctx.Err(). An abandoned wait does not cancel the
// exit request.
//
// Called from the worker goroutine, Shutdown requests the exit, and returns
// ErrWrongGoroutine without waiting.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.requestExit()

	if w.isWorkerGoroutine() {
		return ErrWrongGoroutine
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) requestExit() {
	for {
		switch w.state.Load() {
		case StateNotStarted:
			if w.state.TryTransition(StateNotStarted, StateExited) {
				dropped := w.actions.Clear()
				w.logger.Info().
					Int(`dropped_actions`, dropped).
					Log(`worker exited before start`)
				close(w.done)
				return
			}

		case StateRunning:
			if w.state.TryTransition(StateRunning, StateExitRequested) {
				w.logger.Info().Log(`worker exit requested`)
				// cannot fail, the action is never nil
				_ = w.actions.Enqueue(messageAction{
					worker: w,
					kind:   KindApplicationShutdown,
				})
				return
			}

		default:
			return
		}
	}
}

// QueueAction schedules action to run on the worker goroutine, after every
// action queued before it. It returns ErrInvalidArgument if action is nil,
// or ErrWorkerExited if the worker has exited.
//
// A nil error does not guarantee the action runs if shutdown is in progress:
// an action that races the worker's exit is discarded with the queue.
func (w *Worker) QueueAction(action Action) error {
	if isNilAction(action) {
		return ErrInvalidArgument
	}
	if w.state.Load() == StateExited {
		w.metrics.actionsDropped(1)
		return ErrWorkerExited
	}
	return w.actions.Enqueue(action)
}

// DrainPendingActions implements MessageSource. It panics with
// ErrWrongGoroutine if called outside the worker goroutine.
func (w *Worker) DrainPendingActions() {
	w.mustBeWorkerGoroutine()
	w.actions.DrainAndRun()
}

// PollNextMessage implements MessageSource. It panics with
// ErrWrongGoroutine if called outside the worker goroutine.
func (w *Worker) PollNextMessage() (*Message, bool) {
	w.mustBeWorkerGoroutine()
	return w.messages.PopFront()
}

// OnPaused applies the host application being paused.
func (w *Worker) OnPaused() {
	w.queueHook(`pause`, func() {
		w.queueMessage(NewMessage(KindApplicationPaused))
		w.visibility.SetPaused(true)
	})
}

// OnResumed applies the host application being resumed.
func (w *Worker) OnResumed() {
	w.queueHook(`resume`, func() {
		w.queueMessage(NewMessage(KindApplicationResumed))
		w.visibility.SetPaused(false)
	})
}

// OnAttached applies the view being attached to a window.
func (w *Worker) OnAttached() {
	w.queueHook(`attached`, func() {
		w.visibility.SetDetached(false)
	})
}

// OnDetached applies the view being detached from its window.
func (w *Worker) OnDetached() {
	w.queueHook(`detached`, func() {
		w.visibility.SetDetached(true)
	})
}

// OnWindowFocusChanged applies the window gaining or losing focus.
func (w *Worker) OnWindowFocusChanged(hasFocus bool) {
	w.queueHook(`focus`, func() {
		w.visibility.SetFocusLost(!hasFocus)
	})
}

// OnSurfaceCreated applies a surface being created. The handle is borrowed,
// and is passed to the render loop via KindSurfaceCreated.
func (w *Worker) OnSurfaceCreated(surface any) {
	w.queueHook(`surface-created`, func() {
		w.queueMessage(NewSurfaceCreatedMessage(surface))
		w.visibility.SetHasSurface(true)
	})
}

// OnSurfaceDestroyed applies the surface being destroyed.
func (w *Worker) OnSurfaceDestroyed() {
	w.queueHook(`surface-destroyed`, func() {
		w.visibility.SetHasSurface(false)
		w.queueMessage(NewMessage(KindSurfaceDestroyed))
	})
}

// OnSurfaceResized applies a change to the surface's format or size. Zero
// dimensions may be used if unknown.
func (w *Worker) OnSurfaceResized(width, height int) {
	w.queueHook(`surface-resized`, func() {
		w.queueMessage(NewSurfaceResizedMessage(width, height))
	})
}

func (w *Worker) queueHook(hook string, fn func()) {
	err := w.QueueAction(ActionFunc(func() {
		w.logger.Debug().
			Str(`hook`, hook).
			Log(`lifecycle hook`)
		fn()
	}))
	if err == nil {
		return
	}
	if _, ok := w.dropLimiter.Allow(hook); ok {
		w.logger.Warning().
			Str(`hook`, hook).
			Err(err).
			Log(`lifecycle hook dropped`)
	}
}

// queueMessage must only be called on the worker goroutine, which is the
// sole writer of the message queue.
func (w *Worker) queueMessage(message *Message) {
	// cannot fail, callers never pass nil
	_ = w.messages.Push(message)
}

func (w *Worker) isWorkerGoroutine() bool {
	id := w.goroutineID.Load()
	if id == 0 {
		return false
	}
	return getGoroutineID() == id
}

func (w *Worker) mustBeWorkerGoroutine() {
	if !w.isWorkerGoroutine() {
		panic(ErrWrongGoroutine)
	}
}
