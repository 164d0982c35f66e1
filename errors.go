// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrInvalidArgument is returned when a nil Action or Message is passed to
	// an enqueue or push operation. It indicates a programming error, and is
	// never retried.
	ErrInvalidArgument = errors.New("surfacebridge: invalid argument")

	// ErrAlreadyStarted is returned when Start is called on a worker that has
	// already been started.
	ErrAlreadyStarted = errors.New("surfacebridge: worker already started")

	// ErrWorkerExited is returned when work is queued to, or Start is called
	// on, a worker that has exited.
	ErrWorkerExited = errors.New("surfacebridge: worker has exited")

	// ErrLibraryNotLoaded is returned by NewBridge if LoadLibrary has not
	// completed successfully.
	ErrLibraryNotLoaded = errors.New("surfacebridge: render library not loaded")

	// ErrWrongGoroutine is the panic value used when a worker-only method is
	// called from any goroutine other than the worker's.
	ErrWrongGoroutine = errors.New("surfacebridge: called from outside the worker goroutine")
)

// PanicError wraps a value recovered from a panicking Action or RenderLoop.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("surfacebridge: panic: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
