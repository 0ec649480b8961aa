// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/crypto"
	"github.com/ava-labs/musicvm/crypto/ed25519"
	"github.com/ava-labs/musicvm/state"
)

type noop struct{}

func (*noop) GetTypeID() uint8 { return 0 }

func (*noop) NumAccounts() int { return 1 }

func (*noop) Execute(context.Context, chain.Rules, state.Mutable, int64, chain.Accounts, ids.ID) ([][]byte, error) {
	return nil, nil
}

func (*noop) Size() int { return 0 }

func (*noop) Marshal(*codec.Packer) {}

func registries(t *testing.T) (*codec.TypeParser[chain.Action], *codec.TypeParser[chain.Auth]) {
	actions := codec.NewTypeParser[chain.Action]()
	require.NoError(t, actions.Register(&noop{}, func(*codec.Packer) (chain.Action, error) { return &noop{}, nil }))
	auths := codec.NewTypeParser[chain.Auth]()
	require.NoError(t, auths.Register(&ED25519{}, UnmarshalED25519))
	return actions, auths
}

func newFactory(t *testing.T) *ED25519Factory {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return NewED25519Factory(priv)
}

func TestED25519SignVerify(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	factory := newFactory(t)

	msg := []byte("hello")
	a, err := factory.Sign(msg)
	require.NoError(err)
	require.Equal(consts.ED25519ID, a.GetTypeID())
	require.Equal(factory.Address(), a.Signer())
	require.NoError(a.Verify(ctx, msg))
	require.ErrorIs(a.Verify(ctx, []byte("other")), crypto.ErrInvalidSignature)

	p := codec.NewWriter(a.Size(), a.Size())
	a.Marshal(p)
	require.NoError(p.Err())
	parsed, err := UnmarshalED25519(codec.NewReader(p.Bytes(), a.Size()))
	require.NoError(err)
	require.Equal(a, parsed)

	_, err = UnmarshalED25519(codec.NewReader(make([]byte, ED25519Size), ED25519Size))
	require.ErrorIs(err, crypto.ErrInvalidPublicKey)
}

func TestED25519Batch(t *testing.T) {
	require := require.New(t)
	engine := &ED25519AuthEngine{}

	const count = 11
	bv := engine.GetBatchVerifier(2, count)
	var jobs []func() error
	for i := 0; i < count; i++ {
		msg := []byte{byte(i)}
		a, err := newFactory(t).Sign(msg)
		require.NoError(err)
		if job := bv.Add(msg, a); job != nil {
			jobs = append(jobs, job)
		}
	}
	jobs = append(jobs, bv.Done()...)
	require.Len(jobs, 3)
	for _, job := range jobs {
		require.NoError(job())
	}
}

func TestVerifyTransactions(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	actions, auths := registries(t)
	chainID := ids.GenerateTestID()

	txs := make([]*chain.Transaction, 0, 6)
	for i := 0; i < 6; i++ {
		factory := newFactory(t)
		tx := chain.NewTx(
			&chain.Base{Timestamp: int64(i), ChainID: chainID},
			[]*chain.Instruction{{Accounts: chain.Accounts{chain.Signer(factory.Address())}, Action: &noop{}}},
		)
		signed, err := tx.Sign([]chain.AuthFactory{factory}, actions, auths)
		require.NoError(err)
		txs = append(txs, signed)
	}
	for _, err := range VerifyTransactions(ctx, NewEngines(), 2, txs) {
		require.NoError(err)
	}

	// Corrupt a single signature.
	bad := txs[3].Auths[0].(*ED25519)
	bad.Signature[0]++
	errs := VerifyTransactions(ctx, NewEngines(), 2, txs)
	for i, err := range errs {
		if i == 3 {
			require.ErrorIs(err, chain.ErrAuthFailed)
			continue
		}
		require.NoError(err)
	}
}
