// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package scenario implements scripted sequences of host UI callbacks,
// decoded from YAML, and replayed against a Host such as a
// surfacebridge.Bridge.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Event identifies a host callback.
type Event string

const (
	EventSurfaceCreated   Event = `surface-created`
	EventSurfaceChanged   Event = `surface-changed`
	EventSurfaceDestroyed Event = `surface-destroyed`
	EventAttached         Event = `attached`
	EventDetached         Event = `detached`
	EventFocus            Event = `focus`
	EventPause            Event = `pause`
	EventResume           Event = `resume`
	EventDestroy          Event = `destroy`
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New(`scenario: invalid`)

type (
	// Host is the set of callbacks a UI toolkit delivers to a view.
	Host interface {
		SurfaceCreated(surface any)
		SurfaceChanged(width, height int)
		SurfaceDestroyed()
		AttachedToWindow()
		DetachedFromWindow()
		WindowFocusChanged(hasFocus bool)
		Pause()
		Resume()
		Destroy()
	}

	Scenario struct {
		Name  string `yaml:"name"`
		Steps []Step `yaml:"steps"`
	}

	// Step is a single callback, delivered Repeat times (at least once),
	// followed by an optional Wait.
	Step struct {
		Event   Event         `yaml:"event"`
		Surface string        `yaml:"surface,omitempty"`
		Width   int           `yaml:"width,omitempty"`
		Height  int           `yaml:"height,omitempty"`
		Focus   *bool         `yaml:"focus,omitempty"`
		Repeat  int           `yaml:"repeat,omitempty"`
		Wait    time.Duration `yaml:"wait,omitempty"`
	}
)

func (e Event) Valid() bool {
	switch e {
	case EventSurfaceCreated,
		EventSurfaceChanged,
		EventSurfaceDestroyed,
		EventAttached,
		EventDetached,
		EventFocus,
		EventPause,
		EventResume,
		EventDestroy:
		return true
	default:
		return false
	}
}

// Load reads, decodes, and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: failed to read %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: %q: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document. Unknown fields are
// rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := decodeStrictYAML(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}
	for i, step := range s.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("%w (step %d)", err, i)
		}
		if step.Event == EventDestroy && i != len(s.Steps)-1 {
			return fmt.Errorf("%w: steps after %s (step %d)", ErrInvalid, EventDestroy, i)
		}
	}
	return nil
}

func (x Step) Validate() error {
	if !x.Event.Valid() {
		return fmt.Errorf("%w: unknown event %q", ErrInvalid, x.Event)
	}
	if x.Repeat < 0 {
		return fmt.Errorf("%w: negative repeat", ErrInvalid)
	}
	if x.Wait < 0 {
		return fmt.Errorf("%w: negative wait", ErrInvalid)
	}
	if x.Width < 0 || x.Height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalid)
	}
	if x.Event == EventFocus && x.Focus == nil {
		return fmt.Errorf("%w: %s requires focus", ErrInvalid, EventFocus)
	}
	if x.Event != EventFocus && x.Focus != nil {
		return fmt.Errorf("%w: focus is only valid for %s", ErrInvalid, EventFocus)
	}
	if x.Surface != `` && x.Event != EventSurfaceCreated {
		return fmt.Errorf("%w: surface is only valid for %s", ErrInvalid, EventSurfaceCreated)
	}
	if (x.Width != 0 || x.Height != 0) && x.Event != EventSurfaceChanged {
		return fmt.Errorf("%w: dimensions are only valid for %s", ErrInvalid, EventSurfaceChanged)
	}
	return nil
}

// Len returns the number of callbacks Apply would deliver.
func (s *Scenario) Len() (n int) {
	for _, step := range s.Steps {
		n += max(step.Repeat, 1)
	}
	return
}

// Apply delivers each step to host, in order, returning early with
// ctx.Err() if ctx is done, which is checked before every step, and
// during waits.
func (s *Scenario) Apply(ctx context.Context, host Host) error {
	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		for range max(step.Repeat, 1) {
			step.deliver(host)
		}
		if step.Wait > 0 {
			timer := time.NewTimer(step.Wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}

func (x Step) deliver(host Host) {
	switch x.Event {
	case EventSurfaceCreated:
		host.SurfaceCreated(x.Surface)
	case EventSurfaceChanged:
		host.SurfaceChanged(x.Width, x.Height)
	case EventSurfaceDestroyed:
		host.SurfaceDestroyed()
	case EventAttached:
		host.AttachedToWindow()
	case EventDetached:
		host.DetachedFromWindow()
	case EventFocus:
		host.WindowFocusChanged(*x.Focus)
	case EventPause:
		host.Pause()
	case EventResume:
		host.Resume()
	case EventDestroy:
		host.Destroy()
	default:
		panic(fmt.Errorf("scenario: unexpected event %q", x.Event))
	}
}
