// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"sync"
	"sync/atomic"
)

// process-wide render library state, there is no teardown
var library struct {
	once   sync.Once
	err    error
	loaded atomic.Bool
}

// LoadLibrary performs the one-time, process-wide initialization of the
// external render library, by calling load. Only the first call invokes
// load; every call returns its result. A nil load is treated as a loader
// that always succeeds, for hosts that link the library statically.
//
// LoadLibrary is safe to call concurrently, and must complete successfully
// before NewBridge is called.
func LoadLibrary(load func() error) error {
	library.once.Do(func() {
		if load != nil {
			library.err = load()
		}
		if library.err == nil {
			library.loaded.Store(true)
		}
	})
	return library.err
}

// LibraryLoaded reports whether LoadLibrary has completed successfully.
func LibraryLoaded() bool {
	return library.loaded.Load()
}
