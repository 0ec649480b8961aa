// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/musicvm/state"
)

type holderLock struct {
	holders int
	mu      sync.RWMutex
}

// Lockmap hands out per-key read/write locks. Entries are created on first
// use and dropped when their last holder releases them.
type Lockmap struct {
	l sync.Mutex
	m map[string]*holderLock
}

func New(initSize int) *Lockmap {
	return &Lockmap{
		m: make(map[string]*holderLock, initSize),
	}
}

func (l *Lockmap) Lock(key string) {
	l.lock(key, true)
}

func (l *Lockmap) Unlock(key string) {
	l.unlock(key, true)
}

func (l *Lockmap) RLock(key string) {
	l.lock(key, false)
}

func (l *Lockmap) RUnlock(key string) {
	l.unlock(key, false)
}

func (l *Lockmap) lock(key string, write bool) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		hl = &holderLock{}
		l.m[key] = hl
	}
	hl.holders++
	l.l.Unlock()

	if write {
		hl.mu.Lock()
	} else {
		hl.mu.RLock()
	}
}

func (l *Lockmap) unlock(key string, write bool) {
	l.l.Lock()
	hl := l.m[key]
	hl.holders--
	if hl.holders == 0 {
		delete(l.m, key)
	}
	l.l.Unlock()

	if write {
		hl.mu.Unlock()
	} else {
		hl.mu.RUnlock()
	}
}

// LockKeys acquires every key in [keys] in sorted order, taking a write lock
// for keys that may be written or allocated and a read lock otherwise. The returned
// function releases them all.
func (l *Lockmap) LockKeys(keys state.Keys) func() {
	ordered := maps.Keys(keys)
	slices.Sort(ordered)
	writes := make([]bool, len(ordered))
	for i, k := range ordered {
		writes[i] = keys[k].Has(state.Write) || keys[k].Has(state.Allocate)
		l.lock(k, writes[i])
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			l.unlock(ordered[i], writes[i])
		}
	}
}

func (l *Lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}
