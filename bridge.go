// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// Bridge is the host-facing facade. It translates host toolkit callbacks
// into Worker lifecycle hooks, and is itself the MessageSource passed to the
// render loop.
//
// The Bridge owns its Worker. The Worker holds the Bridge only as its
// MessageSource, and never controls its lifetime. Hosts must call Close (or
// Destroy) when the view is disposed, which joins the worker goroutine.
type Bridge struct {
	worker    *Worker
	logger    *logiface.Logger[logiface.Event]
	closeOnce sync.Once
}

var _ MessageSource = (*Bridge)(nil)

// NewBridge constructs a Bridge, and starts its worker, which runs loop
// until the bridge is closed. LoadLibrary must have completed successfully
// first, or ErrLibraryNotLoaded is returned.
func NewBridge(loop RenderLoop, opts ...Option) (*Bridge, error) {
	if !LibraryLoaded() {
		return nil, ErrLibraryNotLoaded
	}

	worker, err := NewWorker(loop, opts...)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		worker: worker,
		logger: worker.logger,
	}
	worker.source = b

	if err := worker.Start(); err != nil {
		return nil, err
	}

	return b, nil
}

// Worker returns the underlying worker.
func (b *Bridge) Worker() *Worker {
	return b.worker
}

// SurfaceCreated handles the host surface being created.
func (b *Bridge) SurfaceCreated(surface any) {
	b.worker.OnSurfaceCreated(surface)
}

// SurfaceChanged handles the host surface changing format or size.
func (b *Bridge) SurfaceChanged(width, height int) {
	b.worker.OnSurfaceResized(width, height)
}

// SurfaceDestroyed handles the host surface being destroyed.
func (b *Bridge) SurfaceDestroyed() {
	b.worker.OnSurfaceDestroyed()
}

// AttachedToWindow handles the view being attached to a window.
func (b *Bridge) AttachedToWindow() {
	b.worker.OnAttached()
}

// DetachedFromWindow handles the view being detached from its window.
func (b *Bridge) DetachedFromWindow() {
	b.worker.OnDetached()
}

// WindowFocusChanged handles the window gaining or losing focus.
func (b *Bridge) WindowFocusChanged(hasFocus bool) {
	b.worker.OnWindowFocusChanged(hasFocus)
}

// Pause handles the host application being paused.
func (b *Bridge) Pause() {
	b.worker.OnPaused()
}

// Resume handles the host application being resumed.
func (b *Bridge) Resume() {
	b.worker.OnResumed()
}

// Destroy handles the host requesting destruction. It is equivalent to
// Close.
func (b *Bridge) Destroy() {
	_ = b.Close()
}

// QueueEvent schedules action to run on the worker goroutine, e.g. to
// communicate with the render loop. See Worker.QueueAction.
func (b *Bridge) QueueEvent(action Action) error {
	return b.worker.QueueAction(action)
}

// PeekMessage removes and returns the oldest message, for the render loop.
// It must only be called from the render loop.
func (b *Bridge) PeekMessage() (*Message, bool) {
	message, ok := b.worker.PollNextMessage()
	if ok {
		b.logger.Trace().
			Stringer(`kind`, message.Kind()).
			Uint64(`id`, message.ID()).
			Log(`peek message`)
	}
	return message, ok
}

// DrainActions runs all pending actions, for the render loop. It must only
// be called from the render loop.
func (b *Bridge) DrainActions() {
	b.worker.DrainPendingActions()
}

// PollNextMessage implements MessageSource, see PeekMessage.
func (b *Bridge) PollNextMessage() (*Message, bool) {
	return b.PeekMessage()
}

// DrainPendingActions implements MessageSource, see DrainActions.
func (b *Bridge) DrainPendingActions() {
	b.DrainActions()
}

// Close requests the worker exit, and waits for it, see
// Worker.RequestExitAndWait. It is idempotent, and always returns nil.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.logger.Debug().Log(`bridge closing`)
	})
	b.worker.RequestExitAndWait()
	return nil
}
