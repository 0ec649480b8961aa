// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"

	"github.com/ava-labs/musicvm/actions"
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
)

// nextTimestamp is the current time in milliseconds, bumped past the last
// value it returned so repeated requests get distinct ids.
func (vm *VM) nextTimestamp() int64 {
	for {
		last := vm.lastTimestamp.Load()
		next := max(vm.clock.Time().UnixMilli(), last+1)
		if vm.lastTimestamp.CompareAndSwap(last, next) {
			return next
		}
	}
}

// NewTx signs [instructions] with [signers]. The first signer pays for any
// account the instructions create.
func (vm *VM) NewTx(instructions []*chain.Instruction, signers ...chain.AuthFactory) (*chain.Transaction, error) {
	tx := chain.NewTx(&chain.Base{
		Timestamp: vm.nextTimestamp(),
		ChainID:   vm.rules.GetChainID(),
	}, instructions)
	return tx.Sign(signers, vm.actionRegistry, vm.authRegistry)
}

func (vm *VM) submitOne(ctx context.Context, action chain.Action, accounts chain.Accounts, signers ...chain.AuthFactory) (*chain.Result, error) {
	tx, err := vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: action}}, signers...)
	if err != nil {
		return nil, err
	}
	return vm.Submit(ctx, tx)
}

// Initialize creates the program configuration with [initializer] as its
// authority.
func (vm *VM) Initialize(ctx context.Context, initializer chain.AuthFactory) (*chain.Result, error) {
	accounts, err := actions.InitializeAccounts(initializer.Address(), vm.rules.GetProgramID())
	if err != nil {
		return nil, err
	}
	return vm.submitOne(ctx, &actions.Initialize{}, accounts, initializer)
}

// Mint creates the asset identified by [mint]'s address and issues its unit
// to [artist].
func (vm *VM) Mint(ctx context.Context, artist chain.AuthFactory, mint chain.AuthFactory, nft *actions.MintMusicNFT) (*chain.Result, error) {
	accounts, err := actions.MintAccounts(artist.Address(), mint.Address(), vm.rules.GetProgramID())
	if err != nil {
		return nil, err
	}
	return vm.submitOne(ctx, nft, accounts, artist, mint)
}

// Transfer moves [amount] units of [mint] from [owner] to [newOwner].
func (vm *VM) Transfer(ctx context.Context, owner chain.AuthFactory, newOwner, mint codec.Address, amount uint64) (*chain.Result, error) {
	accounts, err := actions.TransferAccounts(owner.Address(), newOwner, mint, vm.rules.GetProgramID())
	if err != nil {
		return nil, err
	}
	return vm.submitOne(ctx, &actions.TransferNFT{Amount: amount}, accounts, owner)
}
