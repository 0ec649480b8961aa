// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

type Rules interface {
	storage.RentRules

	// Should almost always be constant (unless there is a fork of
	// a live network)
	GetChainID() ids.ID
	// GetProgramID is the address the music NFT program is deployed at.
	GetProgramID() codec.Address

	GetMaxActionsPerTx() uint8
	GetMaxAccountsPerAction() uint8
	GetMaxSignatures() uint8

	FetchCustom(string) (any, bool)
}

type Action interface {
	// GetTypeID uniquely identifies each supported [Action]. We use IDs to
	// avoid reflection.
	GetTypeID() uint8

	// NumAccounts is the minimum length of the account list [Execute]
	// expects.
	NumAccounts() int

	// Execute actually runs the [Action] against the ordered [accounts]
	// list. Any state changes that the [Action] performs should be done here.
	//
	// Every account flagged as a signer has already been checked against the
	// transaction's signatures, and any key written that was not declared
	// writable will fail.
	//
	// If [Execute] returns an error, execution will halt and any state
	// changes will revert.
	//
	// [actionID] is a unique, but nonrandom identifier for each [Action].
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		timestamp int64,
		accounts Accounts,
		actionID ids.ID,
	) (outputs [][]byte, err error)

	// Size is the number of bytes it takes to represent this [Action]. This is
	// used to preallocate memory during encoding.
	Size() int

	// Marshal encodes an [Action] as bytes.
	Marshal(p *codec.Packer)
}

type Auth interface {
	// GetTypeID uniquely identifies each supported [Auth]. We use IDs to
	// avoid reflection.
	GetTypeID() uint8

	// Verify is run concurrently during transaction verification. It checks
	// that [msg] was signed by [Signer].
	Verify(ctx context.Context, msg []byte) error

	// Signer is the address that produced this [Auth].
	Signer() codec.Address

	// Size is the number of bytes it takes to represent this [Auth]. This is
	// used to preallocate memory during encoding.
	Size() int

	// Marshal encodes an [Auth] as bytes.
	Marshal(p *codec.Packer)
}

// AuthBatchVerifier collects signatures of one type so they can be verified
// together.
type AuthBatchVerifier interface {
	Add([]byte, Auth) func() error
	Done() []func() error
}

// AuthEngine provides batch verifiers for an [Auth] type.
type AuthEngine interface {
	GetBatchVerifier(cores int, count int) AuthBatchVerifier
}

type Parser interface {
	Rules() Rules
	ActionRegistry() *codec.TypeParser[Action]
	AuthRegistry() *codec.TypeParser[Auth]
}

type AuthFactory interface {
	// Sign is used by helpers, auth object should store internally to be
	// ready for marshaling
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}
