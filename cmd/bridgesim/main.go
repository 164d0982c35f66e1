// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command bridgesim replays a scenario of host UI callbacks against a
// surfacebridge.Bridge, driving an in-process render loop that prints each
// message it receives.
//
// Usage:
//
//	bridgesim <scenario.yaml>
//
// Configuration is read from the environment:
//
//	BRIDGESIM_LOG_LEVEL       log level, e.g. info, debug, trace (default info)
//	BRIDGESIM_FRAME_INTERVAL  render loop frame interval (default 16ms)
//	BRIDGESIM_METRICS         if true, print metrics on exit (default false)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joeycumines/go-surfacebridge"
	"github.com/joeycumines/go-surfacebridge/internal/scenario"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const envPrefix = `bridgesim`

type (
	config struct {
		LogLevel      logLevel      `envconfig:"LOG_LEVEL" default:"info"`
		FrameInterval time.Duration `envconfig:"FRAME_INTERVAL" default:"16ms"`
		Metrics       bool          `envconfig:"METRICS" default:"false"`
	}

	logLevel struct {
		logiface.Level
	}

	// renderLoop stands in for the native render loop, printing messages
	// as they are polled, once per frame.
	renderLoop struct {
		out      io.Writer
		counts   map[surfacebridge.Kind]int
		interval time.Duration
		frames   int
	}
)

var errUsage = errors.New(`usage: bridgesim <scenario.yaml>`)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cfg config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "bridgesim: failed to load config: %v\n", err)
		return 2
	}
	if len(args) != 1 {
		_, _ = fmt.Fprintln(stderr, errUsage)
		return 2
	}
	if err := simulate(ctx, &cfg, args[0], stdout, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "bridgesim: %v\n", err)
		return 1
	}
	return 0
}

func simulate(ctx context.Context, cfg *config, path string, stdout, stderr io.Writer) error {
	script, err := scenario.Load(path)
	if err != nil {
		return err
	}

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(stderr)),
		stumpy.L.WithLevel(cfg.LogLevel.Level),
	).Logger()

	var (
		registry *prometheus.Registry
		metrics  *surfacebridge.Metrics
	)
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		metrics = surfacebridge.NewMetrics(registry)
	}

	if err := surfacebridge.LoadLibrary(nil); err != nil {
		return err
	}

	loop := &renderLoop{
		out:      stdout,
		counts:   make(map[surfacebridge.Kind]int),
		interval: cfg.FrameInterval,
	}

	bridge, err := surfacebridge.NewBridge(
		loop,
		surfacebridge.WithLogger(logger),
		surfacebridge.WithMetrics(metrics),
		surfacebridge.WithName(script.Name),
	)
	if err != nil {
		return err
	}

	logger.Info().
		Str(`scenario`, script.Name).
		Int(`callbacks`, script.Len()).
		Log(`replaying scenario`)

	applyErr := script.Apply(ctx, bridge)

	// the render loop is joined, and its state is safe to read, after close
	if err := bridge.Close(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "scenario %q: %d callbacks, %d frames\n", script.Name, script.Len(), loop.frames)
	for kind := surfacebridge.KindSurfaceCreated; kind.Valid(); kind++ {
		if n := loop.counts[kind]; n != 0 {
			_, _ = fmt.Fprintf(stdout, "  %-20s %d\n", kind, n)
		}
	}

	if registry != nil {
		if err := writeMetrics(stdout, registry); err != nil {
			return err
		}
	}

	return applyErr
}

func (x *renderLoop) Run(src surfacebridge.MessageSource) {
	var ticker *time.Ticker
	if x.interval > 0 {
		ticker = time.NewTicker(x.interval)
		defer ticker.Stop()
	}
	for {
		x.frames++
		src.DrainPendingActions()
		for {
			message, ok := src.PollNextMessage()
			if !ok {
				break
			}
			x.counts[message.Kind()]++
			_, _ = fmt.Fprintf(x.out, "frame %d: %s\n", x.frames, message)
			if message.Kind() == surfacebridge.KindApplicationShutdown {
				return
			}
		}
		if ticker != nil {
			<-ticker.C
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Decode implements envconfig.Decoder, accepting the syslog keywords used
// by logiface.Level.String.
func (x *logLevel) Decode(value string) error {
	for level := logiface.LevelDisabled; level <= logiface.LevelTrace; level++ {
		if level.String() == value {
			x.Level = level
			return nil
		}
	}
	switch value {
	case `error`:
		x.Level = logiface.LevelError
	case `warn`:
		x.Level = logiface.LevelWarning
	default:
		return fmt.Errorf("unknown log level %q", value)
	}
	return nil
}
