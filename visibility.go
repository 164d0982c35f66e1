// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

type (
	// VisibilityTracker derives whether a view is visible (and renderable)
	// from four independent lifecycle signals, pushing a KindWindowVisible or
	// KindWindowHidden message each time the derived value changes.
	//
	// VisibilityTracker is NOT thread-safe, and is owned by the worker.
	VisibilityTracker struct {
		queue   *MessageQueue
		metrics *Metrics
		state   VisibilityState
		visible bool
	}

	// VisibilityState is a snapshot of the four VisibilityTracker signals.
	VisibilityState struct {
		Paused     bool
		Detached   bool
		FocusLost  bool
		HasSurface bool
	}
)

// NewVisibilityTracker constructs a VisibilityTracker in the initial, not
// visible, configuration (paused, detached, focus lost, no surface), that
// pushes transitions to queue.
func NewVisibilityTracker(queue *MessageQueue) *VisibilityTracker {
	if queue == nil {
		panic(ErrInvalidArgument)
	}
	return &VisibilityTracker{
		queue: queue,
		state: VisibilityState{
			Paused:    true,
			Detached:  true,
			FocusLost: true,
		},
	}
}

// Visible reports the derived value, for the current state.
func (x VisibilityState) Visible() bool {
	return !x.Paused && !x.Detached && !x.FocusLost && x.HasSurface
}

// SetPaused updates the paused signal.
func (x *VisibilityTracker) SetPaused(paused bool) {
	x.state.Paused = paused
	x.recompute()
}

// SetDetached updates the detached signal.
func (x *VisibilityTracker) SetDetached(detached bool) {
	x.state.Detached = detached
	x.recompute()
}

// SetFocusLost updates the focus lost signal.
func (x *VisibilityTracker) SetFocusLost(focusLost bool) {
	x.state.FocusLost = focusLost
	x.recompute()
}

// SetHasSurface updates the has surface signal.
func (x *VisibilityTracker) SetHasSurface(hasSurface bool) {
	x.state.HasSurface = hasSurface
	x.recompute()
}

// Visible returns the last derived value.
func (x *VisibilityTracker) Visible() bool {
	return x.visible
}

// Snapshot returns the current signals.
func (x *VisibilityTracker) Snapshot() VisibilityState {
	return x.state
}

// recompute always re-derives the value; the cached value is only used to
// detect a transition.
func (x *VisibilityTracker) recompute() {
	visible := x.state.Visible()
	if visible == x.visible {
		return
	}
	x.visible = visible

	kind := KindWindowHidden
	if visible {
		kind = KindWindowVisible
	}
	// cannot fail, the message is never nil
	_ = x.queue.Push(NewMessage(kind))

	x.metrics.visibilityChanged(visible)
}
