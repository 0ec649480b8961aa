// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/tstate"
)

var (
	_ state.Mutable                  = (*InMemoryStore)(nil)
	_ database.KeyValueWriterDeleter = (*mutableWriter)(nil)
)

// InMemoryStore is an in-memory implementation of `state.Mutable`
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

type mutableWriter struct {
	ctx context.Context
	mu  state.Mutable
}

func (w *mutableWriter) Put(key []byte, value []byte) error {
	return w.mu.Insert(w.ctx, key, value)
}

func (w *mutableWriter) Delete(key []byte) error {
	return w.mu.Remove(w.ctx, key)
}

// ExecuteScoped runs [action] the way a transaction would: inside a view of
// [mu] limited to the keys of [accounts], with every change reverted if the
// action fails.
func ExecuteScoped(
	ctx context.Context,
	action chain.Action,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	accounts chain.Accounts,
	actionID ids.ID,
) ([][]byte, error) {
	if err := accounts.Expect(action.NumAccounts()); err != nil {
		return nil, err
	}
	keys := accounts.StateKeys()
	scope := make(map[string][]byte, len(keys))
	for k := range keys {
		v, err := mu.GetValue(ctx, []byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		scope[k] = v
	}
	ts := tstate.New(len(keys))
	tsv := ts.NewView(keys, scope)
	outputs, err := action.Execute(ctx, r, tsv, timestamp, accounts, actionID)
	if err != nil {
		tsv.Rollback(ctx, 0)
		return outputs, err
	}
	tsv.Commit()
	if _, err := ts.WriteChanges(&mutableWriter{ctx: ctx, mu: mu}); err != nil {
		return nil, err
	}
	return outputs, nil
}

// ActionTest is a single parameterized test. It calls Execute on the action with the passed parameters
// and checks that all assertions pass.
type ActionTest struct {
	Name string

	Action chain.Action

	Rules     chain.Rules
	State     state.Mutable
	Timestamp int64
	Accounts  chain.Accounts
	ActionID  ids.ID

	ExpectedOutputs [][]byte
	ExpectedErr     error

	Assertion func(context.Context, *testing.T, state.Mutable)
}

// Run executes the [ActionTest] and make sure all assertions pass.
func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		output, err := ExecuteScoped(ctx, test.Action, test.Rules, test.State, test.Timestamp, test.Accounts, test.ActionID)

		require.ErrorIs(err, test.ExpectedErr)
		require.Equal(test.ExpectedOutputs, output)

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}
