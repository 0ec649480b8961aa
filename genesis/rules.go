// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/storage"
)

var _ chain.Rules = (*Rules)(nil)

type Rules struct {
	g *Genesis

	programID codec.Address
	chainID   ids.ID
}

// New returns the rules described by [g]. [g] must have passed
// [Genesis.Verify].
func New(g *Genesis, chainID ids.ID) (*Rules, error) {
	programID, err := codec.ParseAddress(g.ProgramID)
	if err != nil {
		return nil, err
	}
	return &Rules{g: g, programID: programID, chainID: chainID}, nil
}

func (r *Rules) GetChainID() ids.ID {
	return r.chainID
}

func (r *Rules) GetProgramID() codec.Address {
	return r.programID
}

func (r *Rules) GetMaxActionsPerTx() uint8 {
	return r.g.MaxActionsPerTx
}

func (r *Rules) GetMaxAccountsPerAction() uint8 {
	return r.g.MaxAccountsPerAction
}

func (r *Rules) GetMaxSignatures() uint8 {
	return r.g.MaxSignatures
}

// RentExemptMinimum charges for the data and the fixed per-account overhead.
func (r *Rules) RentExemptMinimum(space int) uint64 {
	return uint64(space+storage.AccountOverhead) * r.g.LamportsPerByte
}

func (*Rules) FetchCustom(string) (any, bool) {
	return nil, false
}
