// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/storage"
)

// maxDecodedStringLen bounds strings read off the wire. Field specific limits
// are enforced during execution so that they surface as FieldTooLong.
const maxDecodedStringLen = 1024

func ledgerOrDefault(l custody.Ledger, r chain.Rules) custody.Ledger {
	if l != nil {
		return l
	}
	return custody.NewTokenProgram(r)
}

// programAccounts is the fixed tail of the mint and transfer account lists.
var programAccounts = []codec.Address{
	storage.TokenProgramID,
	storage.AssociatedTokenProgramID,
	storage.SystemProgramID,
	storage.RentSysvarID,
}

// expectPrograms checks that the accounts starting at [start] are the
// well-known program accounts.
func expectPrograms(accounts chain.Accounts, start int) error {
	for i, expected := range programAccounts {
		if err := accounts.ExpectAddress(start+i, expected); err != nil {
			return err
		}
	}
	return nil
}
