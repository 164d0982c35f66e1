// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package surfacebridge

import (
	"golang.org/x/sys/unix"
)

// osThreadID returns the kernel thread id of the calling thread, which is
// only meaningful while the goroutine is locked to its thread.
func osThreadID() int {
	return unix.Gettid()
}
