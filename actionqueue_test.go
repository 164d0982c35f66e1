// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package surfacebridge

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionQueue_Enqueue_nil(t *testing.T) {
	q := NewActionQueue()
	assert.ErrorIs(t, q.Enqueue(nil), ErrInvalidArgument)
	assert.ErrorIs(t, q.Enqueue(ActionFunc(nil)), ErrInvalidArgument)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.DrainAndRun())
}

func TestActionQueue_DrainAndRun_fifo(t *testing.T) {
	q := NewActionQueue()
	var order []int
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(ActionFunc(func() { order = append(order, i) })))
	}
	assert.Equal(t, 10, q.Len())
	assert.Equal(t, 10, q.DrainAndRun())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.DrainAndRun())
}

// TestActionQueue_concurrentProducers verifies that actions from many
// producers are each run exactly once, and that each producer's actions run
// in the order that producer enqueued them.
func TestActionQueue_concurrentProducers(t *testing.T) {
	const (
		producers = 16
		perProd   = 500
	)

	q := NewActionQueue()

	var (
		wg    sync.WaitGroup
		stop  = make(chan struct{})
		seen  = make([][]int, producers)
		total int
	)

	// the consumer drains concurrently with the producers
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-stop:
				total += q.DrainAndRun()
				return
			default:
				total += q.DrainAndRun()
			}
		}
	}()

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				// only the consumer goroutine appends to seen
				if err := q.Enqueue(ActionFunc(func() { seen[p] = append(seen[p], i) })); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	<-consumerDone

	assert.Equal(t, producers*perProd, total)
	for p := 0; p < producers; p++ {
		require.Len(t, seen[p], perProd)
		for i, v := range seen[p] {
			if v != i {
				t.Fatalf("producer %d: position %d ran action %d", p, i, v)
			}
		}
	}
}

func TestActionQueue_DrainAndRun_reentrantEnqueue(t *testing.T) {
	q := NewActionQueue()
	var order []string
	require.NoError(t, q.Enqueue(ActionFunc(func() {
		order = append(order, "a")
		require.NoError(t, q.Enqueue(ActionFunc(func() {
			order = append(order, "nested")
		})))
	})))
	require.NoError(t, q.Enqueue(ActionFunc(func() { order = append(order, "b") })))

	assert.Equal(t, 2, q.DrainAndRun())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, q.Len())

	assert.Equal(t, 1, q.DrainAndRun())
	assert.Equal(t, []string{"a", "b", "nested"}, order)
}

// TestActionQueue_DrainAndRun_selfPerpetuating guards against unbounded drain
// loops, where each action enqueues another.
func TestActionQueue_DrainAndRun_selfPerpetuating(t *testing.T) {
	q := NewActionQueue()
	var runs int
	var action ActionFunc
	action = func() {
		runs++
		_ = q.Enqueue(action)
	}
	require.NoError(t, q.Enqueue(action))

	for i := 1; i <= 5; i++ {
		assert.Equal(t, 1, q.DrainAndRun())
		assert.Equal(t, i, runs)
	}
}

func TestActionQueue_DrainAndRun_reentrantDrain(t *testing.T) {
	q := NewActionQueue()
	var order []string
	require.NoError(t, q.Enqueue(ActionFunc(func() {
		order = append(order, "outer")
		require.NoError(t, q.Enqueue(ActionFunc(func() { order = append(order, "inner") })))
		q.DrainAndRun()
	})))
	require.NoError(t, q.Enqueue(ActionFunc(func() { order = append(order, "after") })))

	q.DrainAndRun()
	assert.Equal(t, []string{"outer", "inner", "after"}, order)
}

func TestActionQueue_DrainAndRun_panicRecovered(t *testing.T) {
	var logs syncBuffer
	q := NewActionQueue()
	q.logger = newTestLogger(&logs)

	var ran []int
	require.NoError(t, q.Enqueue(ActionFunc(func() { ran = append(ran, 1) })))
	require.NoError(t, q.Enqueue(ActionFunc(func() { panic(errors.New("boom")) })))
	require.NoError(t, q.Enqueue(ActionFunc(func() { ran = append(ran, 3) })))

	assert.Equal(t, 3, q.DrainAndRun())
	assert.Equal(t, []int{1, 3}, ran)
	assert.True(t, strings.Contains(logs.String(), `action panicked`), logs.String())
	assert.True(t, strings.Contains(logs.String(), `boom`), logs.String())
}

func TestActionQueue_Clear(t *testing.T) {
	q := NewActionQueue()
	var ran bool
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ActionFunc(func() { ran = true })))
	}
	assert.Equal(t, 3, q.Clear())
	assert.Equal(t, 0, q.DrainAndRun())
	assert.False(t, ran)
	assert.Equal(t, 0, q.Clear())
}

type countingAction struct{ n *int }

func (x countingAction) Run() { *x.n++ }

func TestActionQueue_Enqueue_interfaceImplementation(t *testing.T) {
	q := NewActionQueue()
	var n int
	require.NoError(t, q.Enqueue(countingAction{&n}))
	require.NoError(t, q.Enqueue(countingAction{&n}))
	q.DrainAndRun()
	assert.Equal(t, 2, n)
}
