// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/storage"
)

var _ chain.Rules = (*Rules)(nil)

// Rules is a fixed rule set for unit tests.
type Rules struct {
	ChainID         ids.ID
	ProgramID       codec.Address
	LamportsPerByte uint64
}

func NewRules() *Rules {
	return &Rules{
		ChainID:         ids.GenerateTestID(),
		ProgramID:       codec.MustParseAddress(consts.DefaultProgramID),
		LamportsPerByte: 10,
	}
}

func (r *Rules) RentExemptMinimum(space int) uint64 {
	return uint64(space+storage.AccountOverhead) * r.LamportsPerByte
}

func (r *Rules) GetChainID() ids.ID { return r.ChainID }

func (r *Rules) GetProgramID() codec.Address { return r.ProgramID }

func (*Rules) GetMaxActionsPerTx() uint8 { return 4 }

func (*Rules) GetMaxAccountsPerAction() uint8 { return 16 }

func (*Rules) GetMaxSignatures() uint8 { return 4 }

func (*Rules) FetchCustom(string) (any, bool) { return nil, false }
