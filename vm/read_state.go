// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

// readScope fetches the current value of every key in [keys]. Missing keys
// are left out of the result.
func readScope(db database.KeyValueReader, keys state.Keys) (map[string][]byte, error) {
	scope := make(map[string][]byte, len(keys))
	for k := range keys {
		v, err := db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		scope[k] = v
	}
	return scope, nil
}

func (vm *VM) readState() state.Immutable {
	return &dbState{r: vm.db}
}

// GetConfig returns the program configuration, or [ErrNotInitialized].
func (vm *VM) GetConfig(ctx context.Context) (*storage.ProgramConfig, error) {
	programID := vm.rules.GetProgramID()
	addr, _, err := pda.Config(programID)
	if err != nil {
		return nil, err
	}
	config, exists, err := storage.GetProgramConfig(ctx, vm.readState(), addr, programID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotInitialized
	}
	return config, nil
}

func (vm *VM) IsInitialized(ctx context.Context) (bool, error) {
	_, err := vm.GetConfig(ctx)
	if errors.Is(err, ErrNotInitialized) {
		return false, nil
	}
	return err == nil, err
}

// GetMusicNFT returns the record describing the asset identified by [mint].
func (vm *VM) GetMusicNFT(ctx context.Context, mint codec.Address) (*storage.MusicNFT, bool, error) {
	programID := vm.rules.GetProgramID()
	addr, _, err := pda.MusicNFT(mint, programID)
	if err != nil {
		return nil, false, err
	}
	return storage.GetMusicNFT(ctx, vm.readState(), addr, programID)
}

// GetCustodyBalance returns the units of [mint] held in [owner]'s associated
// custody account.
func (vm *VM) GetCustodyBalance(ctx context.Context, owner, mint codec.Address) (uint64, error) {
	addr, err := pda.AssociatedCustody(owner, mint)
	if err != nil {
		return 0, err
	}
	return vm.ledger.Balance(ctx, vm.readState(), addr, mint)
}

// GetBalance returns the lamports held by [addr].
func (vm *VM) GetBalance(ctx context.Context, addr codec.Address) (uint64, error) {
	return storage.GetBalance(ctx, vm.readState(), addr)
}

// GetTransaction returns the recorded outcome of [id].
func (vm *VM) GetTransaction(ctx context.Context, id ids.ID) (bool, *storage.TransactionResult, error) {
	return storage.GetTransaction(ctx, vm.db, id)
}
