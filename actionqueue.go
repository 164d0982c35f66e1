// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

type (
	// Action is a deferred unit of work, executed exactly once, on the worker
	// goroutine, in the order it was enqueued.
	Action interface {
		Run()
	}

	// ActionFunc adapts a plain function to the Action interface.
	ActionFunc func()

	// ActionQueue is an unbounded FIFO of actions, which may be appended to
	// from any goroutine, and is drained by a single owner.
	//
	// Actions are never executed while the internal mutex is held, so an
	// action may itself call Enqueue.
	ActionQueue struct {
		logger  *logiface.Logger[logiface.Event]
		metrics *Metrics
		pending []Action
		spare   []Action
		mu      sync.Mutex
	}
)

var _ Action = ActionFunc(nil)

// Run implements Action.
func (x ActionFunc) Run() { x() }

// NewActionQueue constructs an empty ActionQueue.
func NewActionQueue() *ActionQueue {
	return &ActionQueue{}
}

// Enqueue appends action to the tail of the queue. It returns
// ErrInvalidArgument if action is nil, or is a nil ActionFunc.
func (x *ActionQueue) Enqueue(action Action) error {
	if isNilAction(action) {
		return ErrInvalidArgument
	}

	x.mu.Lock()
	x.pending = append(x.pending, action)
	x.mu.Unlock()

	x.metrics.actionEnqueued()

	return nil
}

// DrainAndRun removes the current contents of the queue, then runs each
// action in FIFO order, on the calling goroutine. Actions enqueued while
// draining, including by the running actions, are left for the next call.
// It returns the number of actions that were run.
//
// A panicking action is recovered and logged, and does not prevent the
// remainder of the snapshot from running.
func (x *ActionQueue) DrainAndRun() int {
	x.mu.Lock()
	if len(x.pending) == 0 {
		x.mu.Unlock()
		return 0
	}
	actions := x.pending
	x.pending = x.spare
	x.spare = nil
	x.mu.Unlock()

	x.metrics.actionsDequeued(len(actions))

	start := time.Now()
	for i, action := range actions {
		x.safeRun(action)
		actions[i] = nil
	}
	n := len(actions)

	x.mu.Lock()
	if x.spare == nil {
		x.spare = actions[:0]
	}
	x.mu.Unlock()

	x.metrics.actionsDrained(n, time.Since(start))

	return n
}

// Len returns the number of actions waiting to be drained.
func (x *ActionQueue) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

// Clear discards all pending actions, without running them, returning the
// number discarded.
func (x *ActionQueue) Clear() int {
	x.mu.Lock()
	n := len(x.pending)
	clear(x.pending)
	x.pending = x.pending[:0]
	x.mu.Unlock()
	if n != 0 {
		x.metrics.actionsCleared(n)
	}
	return n
}

func (x *ActionQueue) safeRun(action Action) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.Err().
				Err(PanicError{Value: r}).
				Log(`action panicked`)
		}
	}()
	action.Run()
}

func isNilAction(action Action) bool {
	if action == nil {
		return true
	}
	if fn, ok := action.(ActionFunc); ok && fn == nil {
		return true
	}
	return false
}
