// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/musicvm/keys"
	"github.com/ava-labs/musicvm/state"
)

var (
	testVal = []byte("value")

	key1    = keys.EncodeChunks([]byte("key1"), 1)
	key1str = string(key1)
	key2    = keys.EncodeChunks([]byte("key2"), 2)
	key2str = string(key2)
)

func TestScope(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	// No Scope
	tsv := ts.NewView(state.Keys{}, map[string][]byte{})
	val, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, ErrInvalidKeyOrPermission)
	require.Nil(val)
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrInvalidKeyOrPermission)
	require.ErrorIs(tsv.Remove(ctx, key1), ErrInvalidKeyOrPermission)
}

func TestReadOnlyKey(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.Read}, map[string][]byte{key1str: testVal})
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)
	require.ErrorIs(tsv.Insert(ctx, key1, []byte("other")), ErrInvalidKeyOrPermission)
	require.ErrorIs(tsv.Remove(ctx, key1), ErrInvalidKeyOrPermission)
	require.Zero(tsv.OpIndex())
}

func TestWriteRequiresAllocateForNewKey(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.Write}, map[string][]byte{})
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrInvalidKeyOrPermission)

	tsv = ts.NewView(state.Keys{key1str: state.All}, map[string][]byte{})
	tsv.DisableAllocation()
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrAllocationDisabled)
	tsv.EnableAllocation()
	require.NoError(tsv.Insert(ctx, key1, testVal))
}

func TestInsertInvalidValue(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.All}, map[string][]byte{})
	require.ErrorIs(tsv.Insert(ctx, key1, make([]byte, 200)), ErrInvalidKeyValue)
	require.ErrorIs(ts.Insert(ctx, []byte("r"), testVal), ErrInvalidKeyValue)
}

func TestDeleteCommitGet(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.Read | state.Write}, map[string][]byte{key1str: testVal})
	require.NoError(tsv.Remove(ctx, key1))
	tsv.Commit()

	// The committed delete shadows the stale storage snapshot.
	tsv = ts.NewView(state.Keys{key1str: state.Read | state.Write}, map[string][]byte{key1str: testVal})
	val, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, database.ErrNotFound)
	require.Nil(val)

	// Removing a missing key is a no-op.
	require.NoError(tsv.Remove(ctx, key1))
	require.Zero(tsv.OpIndex())
}

func TestRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(
		state.Keys{key1str: state.All, key2str: state.All},
		map[string][]byte{key1str: testVal},
	)
	require.NoError(tsv.Insert(ctx, key1, []byte("a")))
	restore := tsv.OpIndex()
	require.NoError(tsv.Insert(ctx, key1, []byte("b")))
	require.NoError(tsv.Insert(ctx, key2, []byte("c")))
	require.NoError(tsv.Remove(ctx, key1))
	require.Equal(4, tsv.OpIndex())

	tsv.Rollback(ctx, restore)
	require.Equal(restore, tsv.OpIndex())
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal([]byte("a"), val)
	_, err = tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)

	tsv.Rollback(ctx, 0)
	require.Zero(tsv.PendingChanges())
	val, err = tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)
}

func TestRollbackCreatedAfterDelete(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.All}, map[string][]byte{key1str: testVal})
	require.NoError(tsv.Remove(ctx, key1))
	restore := tsv.OpIndex()
	require.NoError(tsv.Insert(ctx, key1, []byte("new")))
	tsv.Rollback(ctx, restore)

	_, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestWriteChanges(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(
		state.Keys{key1str: state.All, key2str: state.All},
		map[string][]byte{key2str: testVal},
	)
	require.NoError(tsv.Insert(ctx, key1, testVal))
	require.NoError(tsv.Remove(ctx, key2))
	tsv.Commit()
	require.Equal(2, ts.OpIndex())
	require.Equal(2, ts.PendingChanges())

	db := memdb.New()
	require.NoError(db.Put(key2, testVal))
	batch := db.NewBatch()
	n, err := ts.WriteChanges(batch)
	require.NoError(err)
	require.Equal(2, n)
	require.NoError(batch.Write())

	val, err := db.Get(key1)
	require.NoError(err)
	require.Equal(testVal, val)
	has, err := db.Has(key2)
	require.NoError(err)
	require.False(has)
}
