// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies the lifecycle event carried by a Message.
type Kind uint8

const (
	// KindSurfaceCreated indicates the host created a drawable surface. The
	// Message carries the (borrowed) surface handle.
	KindSurfaceCreated Kind = iota + 1
	// KindSurfaceResized indicates the surface changed format or size.
	KindSurfaceResized
	// KindSurfaceDestroyed indicates the surface is gone, and the handle
	// from the preceding KindSurfaceCreated must no longer be used.
	KindSurfaceDestroyed
	// KindApplicationPaused indicates the host application was paused.
	KindApplicationPaused
	// KindApplicationResumed indicates the host application was resumed.
	KindApplicationResumed
	// KindWindowHidden indicates the view stopped being visible.
	KindWindowHidden
	// KindWindowVisible indicates the view became visible and renderable.
	KindWindowVisible
	// KindApplicationShutdown indicates the render loop must return.
	KindApplicationShutdown
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSurfaceCreated:
		return "SurfaceCreated"
	case KindSurfaceResized:
		return "SurfaceResized"
	case KindSurfaceDestroyed:
		return "SurfaceDestroyed"
	case KindApplicationPaused:
		return "ApplicationPaused"
	case KindApplicationResumed:
		return "ApplicationResumed"
	case KindWindowHidden:
		return "WindowHidden"
	case KindWindowVisible:
		return "WindowVisible"
	case KindApplicationShutdown:
		return "ApplicationShutdown"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindSurfaceCreated && k <= KindApplicationShutdown
}

var messageIDCounter atomic.Uint64

// Message is an immutable lifecycle event, destined for the render loop.
//
// Messages must be constructed using NewMessage, NewSurfaceCreatedMessage, or
// NewSurfaceResizedMessage. The zero value has no valid kind.
type Message struct {
	surface any
	id      uint64
	width   int
	height  int
	kind    Kind
}

// NewMessage constructs a Message without payload. Use the dedicated
// constructors for KindSurfaceCreated and KindSurfaceResized.
func NewMessage(kind Kind) *Message {
	return &Message{
		id:   messageIDCounter.Add(1),
		kind: kind,
	}
}

// NewSurfaceCreatedMessage constructs a KindSurfaceCreated message, borrowing
// the given handle. The handle remains owned by the host toolkit.
func NewSurfaceCreatedMessage(surface any) *Message {
	m := NewMessage(KindSurfaceCreated)
	m.surface = surface
	return m
}

// NewSurfaceResizedMessage constructs a KindSurfaceResized message. Zero
// dimensions mean the host did not report them.
func NewSurfaceResizedMessage(width, height int) *Message {
	m := NewMessage(KindSurfaceResized)
	m.width = width
	m.height = height
	return m
}

// Kind returns the event kind.
func (m *Message) Kind() Kind { return m.kind }

// ID returns the process-unique identifier assigned at construction. IDs are
// strictly increasing in construction order, and are intended for
// diagnostics only.
func (m *Message) ID() uint64 { return m.id }

// Surface returns the borrowed surface handle, which is only set for
// KindSurfaceCreated.
func (m *Message) Surface() any { return m.surface }

// Width returns the reported width, for KindSurfaceResized.
func (m *Message) Width() int { return m.width }

// Height returns the reported height, for KindSurfaceResized.
func (m *Message) Height() int { return m.height }

// String implements fmt.Stringer.
func (m *Message) String() string {
	if m == nil {
		return "<nil>"
	}
	switch m.kind {
	case KindSurfaceResized:
		return fmt.Sprintf("%s#%d(%dx%d)", m.kind, m.id, m.width, m.height)
	default:
		return fmt.Sprintf("%s#%d", m.kind, m.id)
	}
}
