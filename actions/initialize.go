// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

// Account positions expected by [Initialize].
const (
	InitializeInitializer = iota
	InitializeConfig
	InitializeSystemProgram

	initializeAccounts
)

var _ chain.Action = (*Initialize)(nil)

// Initialize creates the program configuration singleton. It can only ever
// succeed once.
type Initialize struct{}

func (*Initialize) GetTypeID() uint8 {
	return consts.InitializeID
}

func (*Initialize) NumAccounts() int {
	return initializeAccounts
}

// InitializeAccounts returns the account list for an initialize call by
// [initializer].
func InitializeAccounts(initializer codec.Address, programID codec.Address) (chain.Accounts, error) {
	config, _, err := pda.Config(programID)
	if err != nil {
		return nil, err
	}
	return chain.Accounts{
		chain.Signer(initializer),
		chain.Writable(config),
		chain.ReadOnly(storage.SystemProgramID),
	}, nil
}

func (*Initialize) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	accounts chain.Accounts,
	_ ids.ID,
) ([][]byte, error) {
	if err := accounts.Expect(initializeAccounts); err != nil {
		return nil, err
	}
	initializer, err := accounts.Signer(InitializeInitializer)
	if err != nil {
		return nil, err
	}
	if _, err := accounts.Writable(InitializeInitializer); err != nil {
		return nil, err
	}
	configAddr, err := accounts.Writable(InitializeConfig)
	if err != nil {
		return nil, err
	}
	programID := r.GetProgramID()
	bump, err := pda.Verify(configAddr, pda.ConfigSeeds(), programID)
	if err != nil {
		return nil, err
	}
	if err := accounts.ExpectAddress(InitializeSystemProgram, storage.SystemProgramID); err != nil {
		return nil, err
	}
	_, exists, err := storage.GetAccount(ctx, mu, configAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: program already initialized", chain.ErrAlreadyExists)
	}
	if _, err := storage.CreateAccount(ctx, mu, r, initializer, configAddr, programID, storage.ProgramConfigSpace); err != nil {
		return nil, err
	}
	config := &storage.ProgramConfig{
		Version:       storage.ConfigVersion,
		Authority:     initializer,
		Bump:          bump,
		InitializedAt: timestamp,
	}
	if err := storage.PutProgramConfig(ctx, mu, configAddr, programID, config); err != nil {
		return nil, err
	}
	return [][]byte{configAddr[:]}, nil
}

func (*Initialize) Size() int {
	return 0
}

func (*Initialize) Marshal(*codec.Packer) {}

func UnmarshalInitialize(*codec.Packer) (chain.Action, error) {
	return &Initialize{}, nil
}

// loadConfig returns the program configuration named by the account at [i].
func loadConfig(ctx context.Context, r chain.Rules, mu state.Immutable, accounts chain.Accounts, i int) (*storage.ProgramConfig, error) {
	configAddr := accounts.Address(i)
	if _, err := pda.Verify(configAddr, pda.ConfigSeeds(), r.GetProgramID()); err != nil {
		return nil, err
	}
	config, exists, err := storage.GetProgramConfig(ctx, mu, configAddr, r.GetProgramID())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, chain.ErrNotInitialized
	}
	return config, nil
}
