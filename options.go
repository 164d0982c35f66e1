// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// options holds configuration for Worker and Bridge creation.
type options struct {
	logger       *logiface.Logger[logiface.Event]
	metrics      *Metrics
	dropLimiter  *catrate.Limiter
	name         string
	dropLogRates map[time.Duration]int
}

// Option configures a Worker or Bridge.
type Option interface {
	apply(*options) error
}

type optionImpl struct {
	applyFunc func(*options) error
}

func (o *optionImpl) apply(opts *options) error {
	return o.applyFunc(opts)
}

// WithLogger sets the structured logger. A nil logger (the default) disables
// logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables instrumentation, see NewMetrics. A nil value disables
// it (the default).
func WithMetrics(metrics *Metrics) Option {
	return &optionImpl{func(opts *options) error {
		opts.metrics = metrics
		return nil
	}}
}

// WithName sets the name used to identify the worker in logs. Defaults to a
// name derived from a random UUID.
func WithName(name string) Option {
	return &optionImpl{func(opts *options) error {
		opts.name = name
		return nil
	}}
}

// WithDropLogRate configures the rate limits applied to warnings logged when
// work is queued after the worker has exited, per lifecycle hook. A nil or
// empty map disables rate limiting. See catrate.NewLimiter for the rules.
//
// Defaults to 5 per second and 30 per minute.
func WithDropLogRate(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *options) error {
		opts.dropLogRates = rates
		return nil
	}}
}

var defaultDropLogRates = map[time.Duration]int{
	time.Second: 5,
	time.Minute: 30,
}

// resolveOptions applies Option instances to options.
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		dropLogRates: defaultDropLogRates,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if len(cfg.dropLogRates) != 0 {
		limiter, err := newDropLimiter(cfg.dropLogRates)
		if err != nil {
			return nil, err
		}
		cfg.dropLimiter = limiter
	}
	return cfg, nil
}

func newDropLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("surfacebridge: invalid drop log rates: %w", ErrInvalidArgument)
		}
	}()
	limiter = catrate.NewLimiter(rates)
	return
}
