// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"sync/atomic"
)

// WorkerState represents the lifecycle state of a Worker.
//
// State Machine:
//
//	StateNotStarted → StateRunning          [Start()]
//	StateNotStarted → StateExited           [RequestExitAndWait() before Start()]
//	StateRunning → StateExitRequested       [RequestExitAndWait() / Shutdown()]
//	StateRunning → StateExited              [render loop returned]
//	StateExitRequested → StateExited        [render loop returned]
//	StateExited → (terminal)
type WorkerState uint32

const (
	// StateNotStarted indicates the worker has been created but not started.
	StateNotStarted WorkerState = iota
	// StateRunning indicates the worker goroutine is running the render loop.
	StateRunning
	// StateExitRequested indicates shutdown has been queued, but the render
	// loop has not yet returned.
	StateExitRequested
	// StateExited indicates the worker goroutine has finished.
	StateExited
)

// String returns a human-readable representation of the state.
func (s WorkerState) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateRunning:
		return "Running"
	case StateExitRequested:
		return "ExitRequested"
	case StateExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// workerState is a lock-free holder for WorkerState.
type workerState struct {
	v atomic.Uint32
}

func (s *workerState) Load() WorkerState {
	return WorkerState(s.v.Load())
}

// Store is only valid for the terminal state.
func (s *workerState) Store(state WorkerState) {
	s.v.Store(uint32(state))
}

func (s *workerState) TryTransition(from, to WorkerState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
