// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "surfacebridge"

// Metrics holds the Prometheus collectors for the action and message
// transport. A nil *Metrics is valid, and records nothing.
//
// A single Metrics value may be shared by any number of workers. The depth
// gauge is adjusted by deltas, so it reports the sum across workers.
type Metrics struct {
	ActionsEnqueued       prometheus.Counter
	ActionsExecuted       prometheus.Counter
	ActionsDropped        prometheus.Counter
	ActionQueueDepth      prometheus.Gauge
	DrainDuration         prometheus.Histogram
	MessagesPushed        *prometheus.CounterVec
	MessagesPolled        *prometheus.CounterVec
	VisibilityTransitions *prometheus.CounterVec
	WorkersRunning        prometheus.Gauge
}

// NewMetrics creates and registers the collectors with reg. If reg is nil,
// the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActionsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_enqueued_total",
			Help:      "Total number of actions appended to action queues",
		}),
		ActionsExecuted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_executed_total",
			Help:      "Total number of actions run by drains",
		}),
		ActionsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_dropped_total",
			Help:      "Total number of actions discarded without running",
		}),
		ActionQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "action_queue_depth",
			Help:      "Number of actions waiting to be drained",
		}),
		DrainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "drain_duration_seconds",
			Help:      "Time spent running each non-empty drain",
			Buckets:   []float64{.00001, .0001, .001, .005, .01, .05, .1, .5},
		}),
		MessagesPushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_pushed_total",
			Help:      "Total number of messages pushed to message queues",
		}, []string{"kind"}),
		MessagesPolled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_polled_total",
			Help:      "Total number of messages consumed from message queues",
		}, []string{"kind"}),
		VisibilityTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "visibility_transitions_total",
			Help:      "Total number of visibility transitions",
		}, []string{"visible"}),
		WorkersRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workers_running",
			Help:      "Number of worker goroutines currently running a render loop",
		}),
	}
}

func (m *Metrics) actionEnqueued() {
	if m == nil {
		return
	}
	m.ActionsEnqueued.Inc()
	m.ActionQueueDepth.Inc()
}

// actionsDequeued records n actions leaving a queue, to be run.
func (m *Metrics) actionsDequeued(n int) {
	if m == nil {
		return
	}
	m.ActionQueueDepth.Sub(float64(n))
}

func (m *Metrics) actionsDrained(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.ActionsExecuted.Add(float64(n))
	m.DrainDuration.Observe(d.Seconds())
}

// actionsCleared records n queued actions being discarded.
func (m *Metrics) actionsCleared(n int) {
	if m == nil {
		return
	}
	m.ActionsDropped.Add(float64(n))
	m.ActionQueueDepth.Sub(float64(n))
}

// actionsDropped records n actions rejected before being queued.
func (m *Metrics) actionsDropped(n int) {
	if m == nil {
		return
	}
	m.ActionsDropped.Add(float64(n))
}

func (m *Metrics) messagePushed(kind Kind) {
	if m == nil {
		return
	}
	m.MessagesPushed.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) messagePolled(kind Kind) {
	if m == nil {
		return
	}
	m.MessagesPolled.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) visibilityChanged(visible bool) {
	if m == nil {
		return
	}
	m.VisibilityTransitions.WithLabelValues(strconv.FormatBool(visible)).Inc()
}

func (m *Metrics) workerStarted() {
	if m == nil {
		return
	}
	m.WorkersRunning.Inc()
}

func (m *Metrics) workerStopped() {
	if m == nil {
		return
	}
	m.WorkersRunning.Dec()
}
