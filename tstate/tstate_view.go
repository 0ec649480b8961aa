// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/musicvm/keys"
	"github.com/ava-labs/musicvm/state"
)

const defaultOps = 4

type op struct {
	k string

	pastExists  bool
	pastV       []byte
	pastChanged bool
}

type TStateView struct {
	ts                 *TState
	pendingChangedKeys map[string]maybe.Maybe[[]byte]

	// Ops is a record of all operations performed on [TState]. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	// scope is the set of keys the view may touch and the permissions
	// held on each. scopeStorage holds their values before execution.
	scope        state.Keys
	scopeStorage map[string][]byte

	canAllocate bool
}

func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *TStateView {
	return &TStateView{
		ts:                 ts,
		pendingChangedKeys: make(map[string]maybe.Maybe[[]byte], len(scope)),

		ops: make([]*op, 0, defaultOps),

		scope:        scope,
		scopeStorage: storage,

		canAllocate: true,
	}
}

// Rollback restores the TStateView to the ts.op[restorePoint] operation.
func (ts *TStateView) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// Key was untouched in this view before the op.
		if !op.pastChanged {
			delete(ts.pendingChangedKeys, op.k)
			continue
		}
		if !op.pastExists {
			ts.pendingChangedKeys[op.k] = maybe.Nothing[[]byte]()
			continue
		}
		ts.pendingChangedKeys[op.k] = maybe.Some(op.pastV)
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on ts.
func (ts *TStateView) OpIndex() int {
	return len(ts.ops)
}

// DisableAllocation causes [Insert] to return an error if
// it would create a new key.
func (ts *TStateView) DisableAllocation() {
	ts.canAllocate = false
}

// EnableAllocation removes the forced error case in [Insert]
// if a new key is created.
func (ts *TStateView) EnableAllocation() {
	ts.canAllocate = true
}

// checkScope returns whether [k] was declared with at least [perm].
func (ts *TStateView) checkScope(_ context.Context, k []byte, perm state.Permissions) bool {
	return ts.scope[string(k)].Has(perm)
}

// GetValue returns the value associated with [key]. If [key] was not declared
// readable an error is returned.
func (ts *TStateView) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if !ts.checkScope(ctx, key, state.Read) {
		return nil, ErrInvalidKeyOrPermission
	}
	v, _, exists := ts.getValue(ctx, string(key))
	if !exists {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (ts *TStateView) getValue(ctx context.Context, key string) ([]byte, bool, bool) {
	if v, ok := ts.pendingChangedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	if v, changed, exists := ts.ts.getChangedValue(ctx, key); changed {
		return v, false, exists
	}
	if v, ok := ts.scopeStorage[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// Insert sets or updates [key] to [value]. Updating an existing key requires
// Write and creating one requires Allocate.
//
// Any bytes passed into [Insert] will be consumed by [TState] and should
// not be modified/referenced after this call.
func (ts *TStateView) Insert(ctx context.Context, key []byte, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	k := string(key)
	past, changed, exists := ts.getValue(ctx, k)
	if exists {
		if !ts.checkScope(ctx, key, state.Write) {
			return ErrInvalidKeyOrPermission
		}
	} else {
		if !ts.checkScope(ctx, key, state.Allocate) {
			return ErrInvalidKeyOrPermission
		}
		if !ts.canAllocate {
			return ErrAllocationDisabled
		}
	}
	ts.pendingChangedKeys[k] = maybe.Some(value)
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  exists,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// Remove deletes [key]. Removing a key that does not exist is a no-op.
func (ts *TStateView) Remove(ctx context.Context, key []byte) error {
	if !ts.checkScope(ctx, key, state.Write) {
		return ErrInvalidKeyOrPermission
	}
	k := string(key)
	past, changed, exists := ts.getValue(ctx, k)
	if !exists {
		return nil
	}
	ts.pendingChangedKeys[k] = maybe.Nothing[[]byte]()
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  true,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// PendingChanges returns the number of keys modified by this view.
func (ts *TStateView) PendingChanges() int {
	return len(ts.pendingChangedKeys)
}

// Commit moves every pending change into the parent [TState].
func (ts *TStateView) Commit() {
	ts.ts.l.Lock()
	defer ts.ts.l.Unlock()

	for k, v := range ts.pendingChangedKeys {
		ts.ts.changedKeys[k] = v
	}
	ts.ts.ops += len(ts.ops)
}
