// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/ava-labs/musicvm/state"
)

// Executor sequences the concurrent execution of
// tasks with arbitrary conflicts on-the-fly.
//
// Executor ensures that conflicting tasks
// are executed in the order they were queued.
// Two tasks conflict when they share a key and at least
// one of them may modify it. Tasks with no conflicts are
// executed immediately (up to the concurrency limit).
type Executor struct {
	added int
	tasks []*task
	edges map[string]*edge
	sem   chan struct{}

	outstanding sync.WaitGroup

	err atomic.Error
}

// edge is the most recent writer of a key and the readers queued after it.
type edge struct {
	writer  int
	readers []int
}

// New creates a new [Executor] for at most [items] tasks, running at most
// [concurrency] of them at once.
func New(items, concurrency int) *Executor {
	return &Executor{
		tasks: make([]*task, items),
		edges: make(map[string]*edge, items*2),
		sem:   make(chan struct{}, max(concurrency, 1)),
	}
}

type task struct {
	f func() error

	l        sync.Mutex
	waiters  map[int]*sync.WaitGroup
	executed bool
}

func (e *Executor) dependOn(id int, dep int, wg *sync.WaitGroup) {
	if dep < 0 || dep == id {
		return
	}
	dt := e.tasks[dep]
	dt.l.Lock()
	defer dt.l.Unlock()
	if dt.executed {
		return
	}
	if _, ok := dt.waiters[id]; ok {
		return
	}
	wg.Add(1)
	dt.waiters[id] = wg
}

// Run executes [f] after all previously enqueued [f] with
// conflicting [conflicts] are executed.
//
// Run is not safe to call concurrently.
func (e *Executor) Run(conflicts state.Keys, f func() error) {
	// Ensure too many tasks not enqueued
	if e.added >= len(e.tasks) {
		e.err.CompareAndSwap(nil, ErrTooManyTasks)
		return
	}

	// Generate task
	id := e.added
	e.added++
	t := &task{
		f:       f,
		waiters: map[int]*sync.WaitGroup{},
	}
	e.tasks[id] = t
	e.outstanding.Add(1)

	// Record dependencies
	wg := &sync.WaitGroup{}
	for k, perm := range conflicts {
		ed, ok := e.edges[k]
		if !ok {
			ed = &edge{writer: -1}
			e.edges[k] = ed
		}
		e.dependOn(id, ed.writer, wg)
		if !perm.Has(state.Write) && !perm.Has(state.Allocate) {
			ed.readers = append(ed.readers, id)
			continue
		}
		for _, r := range ed.readers {
			e.dependOn(id, r, wg)
		}
		ed.writer = id
		ed.readers = nil
	}

	// Wait for the scheduler to execute us
	go func() {
		// Block until our dependencies have been executed
		wg.Wait()

		// Ensure we unblock our dependents
		defer func() {
			t.l.Lock()
			for _, w := range t.waiters {
				w.Done()
			}
			t.waiters = nil
			t.executed = true
			t.l.Unlock()
			e.outstanding.Done()
		}()

		// Stop early if executor is stopped
		if e.err.Load() != nil {
			return
		}

		// Execute task once we aren't too busy
		e.sem <- struct{}{}
		defer func() { <-e.sem }()
		if err := t.f(); err != nil {
			e.err.CompareAndSwap(nil, err)
			return
		}
	}()
}

func (e *Executor) Stop() {
	e.err.CompareAndSwap(nil, ErrStopped)
}

// Wait returns as soon as all enqueued [f] are executed.
//
// You should not call [Run] after [Wait] is called.
func (e *Executor) Wait() error {
	e.outstanding.Wait()
	return e.err.Load()
}
