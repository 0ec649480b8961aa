// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

var (
	ErrInvalidProgramID      = errors.New("invalid program id")
	ErrInvalidAllocation     = errors.New("invalid allocation")
	ErrInvalidRentRate       = errors.New("lamports per byte must be non-zero")
	ErrInvalidTransactionCap = errors.New("transaction limits must be non-zero")
)

type CustomAllocation struct {
	Address string `json:"address"` // base58
	Balance uint64 `json:"balance"`
}

type Genesis struct {
	ProgramID string `json:"programID"`

	// Rent
	LamportsPerByte uint64 `json:"lamportsPerByte"`

	// Transaction limits
	MaxActionsPerTx      uint8 `json:"maxActionsPerTx"`
	MaxAccountsPerAction uint8 `json:"maxAccountsPerAction"`
	MaxSignatures        uint8 `json:"maxSignatures"`

	// Allocations
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
}

func Default() *Genesis {
	return &Genesis{
		ProgramID: consts.DefaultProgramID,

		// Matches the rent a record pays on a default cluster (6.96 lamports
		// per byte-year, two years exempt), rounded.
		LamportsPerByte: 7_000,

		MaxActionsPerTx:      4,
		MaxAccountsPerAction: 16,
		MaxSignatures:        4,
	}
}

// Load parses [b] on top of [Default] and checks the result.
func Load(b []byte) (*Genesis, error) {
	g := Default()
	if len(b) > 0 {
		if err := json.Unmarshal(b, g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
		}
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genesis) Verify() error {
	if _, err := codec.ParseAddress(g.ProgramID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProgramID, err)
	}
	if g.LamportsPerByte == 0 {
		return ErrInvalidRentRate
	}
	if g.MaxActionsPerTx == 0 || g.MaxAccountsPerAction == 0 || g.MaxSignatures == 0 {
		return ErrInvalidTransactionCap
	}
	seen := set.NewSet[codec.Address](len(g.CustomAllocation))
	for _, alloc := range g.CustomAllocation {
		addr, err := codec.ParseAddress(alloc.Address)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidAllocation, alloc.Address, err)
		}
		if seen.Contains(addr) {
			return fmt.Errorf("%w: duplicate address %s", ErrInvalidAllocation, alloc.Address)
		}
		seen.Add(addr)
	}
	return nil
}

// InitializeState credits every custom allocation and returns the total
// supply created.
func (g *Genesis) InitializeState(ctx context.Context, mu state.Mutable) (uint64, error) {
	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		addr, err := codec.ParseAddress(alloc.Address)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", err, alloc.Address)
		}
		supply, err = safemath.Add(supply, alloc.Balance)
		if err != nil {
			return 0, err
		}
		if err := storage.AddBalance(ctx, mu, addr, alloc.Balance); err != nil {
			return 0, fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return supply, nil
}
