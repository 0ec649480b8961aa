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
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

// Account positions expected by [TransferNFT].
const (
	TransferOwner = iota
	TransferNewOwner
	TransferConfig
	TransferMusicNFTRecord
	TransferMint
	TransferFromTokenAccount
	TransferToTokenAccount
	TransferTokenProgram
	TransferAssociatedTokenProgram
	TransferSystemProgram
	TransferRent

	transferAccounts
)

var _ chain.Action = (*TransferNFT)(nil)

// TransferNFT moves the custody unit of an asset to a new owner and updates
// the record to match.
type TransferNFT struct {
	// Amount must be exactly 1.
	Amount uint64 `json:"amount"`

	ledger custody.Ledger
}

func (*TransferNFT) GetTypeID() uint8 {
	return consts.TransferNFTID
}

func (*TransferNFT) NumAccounts() int {
	return transferAccounts
}

// TransferAccounts returns the account list for [owner] sending the asset
// identified by [mint] to [newOwner].
func TransferAccounts(owner, newOwner, mint, programID codec.Address) (chain.Accounts, error) {
	config, _, err := pda.Config(programID)
	if err != nil {
		return nil, err
	}
	record, _, err := pda.MusicNFT(mint, programID)
	if err != nil {
		return nil, err
	}
	from, err := pda.AssociatedCustody(owner, mint)
	if err != nil {
		return nil, err
	}
	to, err := pda.AssociatedCustody(newOwner, mint)
	if err != nil {
		return nil, err
	}
	return chain.Accounts{
		chain.Signer(owner),
		chain.ReadOnly(newOwner),
		chain.ReadOnly(config),
		chain.Writable(record),
		chain.ReadOnly(mint),
		chain.Writable(from),
		chain.Writable(to),
		chain.ReadOnly(storage.TokenProgramID),
		chain.ReadOnly(storage.AssociatedTokenProgramID),
		chain.ReadOnly(storage.SystemProgramID),
		chain.ReadOnly(storage.RentSysvarID),
	}, nil
}

func (t *TransferNFT) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	accounts chain.Accounts,
	_ ids.ID,
) ([][]byte, error) {
	if err := accounts.Expect(transferAccounts); err != nil {
		return nil, err
	}
	programID := r.GetProgramID()
	if _, err := loadConfig(ctx, r, mu, accounts, TransferConfig); err != nil {
		return nil, err
	}
	owner, err := accounts.Signer(TransferOwner)
	if err != nil {
		return nil, err
	}
	if t.Amount != 1 {
		return nil, fmt.Errorf("%w: got %d", chain.ErrInvalidAmount, t.Amount)
	}
	for _, i := range []int{TransferOwner, TransferMusicNFTRecord, TransferFromTokenAccount, TransferToTokenAccount} {
		if _, err := accounts.Writable(i); err != nil {
			return nil, err
		}
	}

	// The record is always re-derived from the supplied mint and must
	// describe that same mint.
	mint := accounts.Address(TransferMint)
	recordAddr := accounts.Address(TransferMusicNFTRecord)
	if _, err := pda.Verify(recordAddr, pda.MusicNFTSeeds(mint), programID); err != nil {
		return nil, err
	}
	record, exists, err := storage.GetMusicNFT(ctx, mu, recordAddr, programID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: no music nft for mint %s", chain.ErrInvalidArgument, mint)
	}
	if record.Mint != mint {
		return nil, fmt.Errorf("%w: record describes mint %s, got %s", chain.ErrAddressMismatch, record.Mint, mint)
	}
	if record.Owner != owner {
		return nil, fmt.Errorf("%w: %s does not own %s", chain.ErrUnauthorized, owner, mint)
	}
	newOwner := accounts.Address(TransferNewOwner)
	if newOwner == owner {
		return nil, fmt.Errorf("%w: cannot transfer to current owner", chain.ErrInvalidArgument)
	}

	from := accounts.Address(TransferFromTokenAccount)
	if err := pda.VerifyAssociatedCustody(from, owner, mint); err != nil {
		return nil, err
	}
	to := accounts.Address(TransferToTokenAccount)
	if err := pda.VerifyAssociatedCustody(to, newOwner, mint); err != nil {
		return nil, err
	}
	if err := expectPrograms(accounts, TransferTokenProgram); err != nil {
		return nil, err
	}

	ledger := ledgerOrDefault(t.ledger, r)
	balance, err := ledger.Balance(ctx, mu, from, mint)
	if err != nil {
		return nil, err
	}
	if balance < t.Amount {
		return nil, fmt.Errorf("%w: %s holds %d", chain.ErrInsufficientCustody, from, balance)
	}
	if _, exists, err := ledger.GetTokenAccount(ctx, mu, to); err != nil {
		return nil, err
	} else if !exists {
		created, err := ledger.CreateCustodyAccount(ctx, mu, owner, newOwner, mint)
		if err != nil {
			return nil, err
		}
		if created != to {
			return nil, fmt.Errorf("%w: ledger created custody %s, expected %s", chain.ErrInvariantViolated, created, to)
		}
	}
	if err := ledger.TransferUnit(ctx, mu, from, to, mint, owner, t.Amount); err != nil {
		return nil, err
	}
	record.Owner = newOwner
	if err := storage.PutMusicNFT(ctx, mu, recordAddr, programID, record); err != nil {
		return nil, err
	}
	return nil, nil
}

func (*TransferNFT) Size() int {
	return consts.Uint64Len
}

func (t *TransferNFT) Marshal(p *codec.Packer) {
	p.PackUint64(t.Amount)
}

func UnmarshalTransferNFT(p *codec.Packer) (chain.Action, error) {
	var t TransferNFT
	t.Amount = p.UnpackUint64(false)
	return &t, p.Err()
}
