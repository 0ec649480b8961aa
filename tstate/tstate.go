// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/musicvm/keys"
)

// TState defines a struct for storing temporary state.
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState. [changedSize] is an estimate of the
// number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// Insert should only be called if you know what you are doing (updates
// here may not be reflected in get calls in tstate views and/or may overwrite
// identical keys on disk). It is used to seed genesis state.
func (ts *TState) Insert(_ context.Context, key, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	ts.l.Lock()
	defer ts.l.Unlock()

	ts.changedKeys[string(key)] = maybe.Some(value)
	ts.ops++
	return nil
}

// OpIndex returns the number of operations committed to [ts].
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// PendingChanges returns the number of keys modified in [ts].
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// WriteChanges applies every change in [ts] to [w] in key order and returns
// the number of keys written.
//
// Once [WriteChanges] is called, [TState] should not be used again (as the
// bytes stored are consumed).
func (ts *TState) WriteChanges(w database.KeyValueWriterDeleter) (int, error) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	changed := maps.Keys(ts.changedKeys)
	slices.Sort(changed)
	for _, key := range changed {
		v := ts.changedKeys[key]
		if v.IsNothing() {
			if err := w.Delete([]byte(key)); err != nil {
				return 0, err
			}
			continue
		}
		if err := w.Put([]byte(key), v.Value()); err != nil {
			return 0, err
		}
	}
	return len(changed), nil
}
