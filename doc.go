// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package surfacebridge relays host UI lifecycle events (surface, window and
// application state) to an external render loop, which runs on a dedicated
// worker goroutine, locked to its OS thread.
//
// # Architecture
//
// A [Bridge] receives host callbacks, on any goroutine, and forwards each as
// an [Action], via the [Worker]'s [ActionQueue]. The worker goroutine spends
// its entire life inside [RenderLoop.Run], which pulls work back out through
// [MessageSource]: once per iteration, it drains pending actions, then polls
// messages until none remain.
//
// Draining applies lifecycle changes to a [VisibilityTracker], and pushes
// [Message] values to a [MessageQueue]. The tracker derives visibility as
//
//	!paused && !detached && !focusLost && hasSurface
//
// and pushes [KindWindowVisible] or [KindWindowHidden] only when that value
// changes.
//
// # Thread Safety
//
//   - Lifecycle hooks, [Worker.QueueAction] and [Bridge.QueueEvent] are safe to
//     call from any goroutine, and never run anything synchronously
//   - [MessageSource] methods must be called from the render loop, and panic
//     with [ErrWrongGoroutine] otherwise
//   - There is no public entry point that pushes messages from other
//     goroutines; use an action
//
// # Ordering
//
// Actions run in the order enqueued. Each drain runs a snapshot of the queue,
// so actions enqueued by running actions wait for the next drain. Messages
// are polled in the order pushed.
//
// # Shutdown
//
// [Worker.RequestExitAndWait] (and [Bridge.Close]) queue a
// [KindApplicationShutdown] message behind all pending actions, then block
// until the render loop returns. It is idempotent. The render loop must
// return once it observes [KindApplicationShutdown].
//
// # Usage
//
//	if err := surfacebridge.LoadLibrary(nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	bridge, err := surfacebridge.NewBridge(surfacebridge.RenderLoopFunc(func(src surfacebridge.MessageSource) {
//	    for {
//	        src.DrainPendingActions()
//	        for {
//	            msg, ok := src.PollNextMessage()
//	            if !ok {
//	                break
//	            }
//	            if msg.Kind() == surfacebridge.KindApplicationShutdown {
//	                return
//	            }
//	        }
//	        time.Sleep(16 * time.Millisecond)
//	    }
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Close()
package surfacebridge
