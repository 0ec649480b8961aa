// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

// CheckCustodyConsistency verifies that the record of [mint] names the
// holder of its only unit, that the unit exists exactly once and that no
// more can be minted. Any disagreement is [chain.ErrInvariantViolated].
func CheckCustodyConsistency(
	ctx context.Context,
	im state.Immutable,
	ledger custody.Ledger,
	programID codec.Address,
	mint codec.Address,
) error {
	recordAddr, _, err := pda.MusicNFT(mint, programID)
	if err != nil {
		return err
	}
	record, exists, err := storage.GetMusicNFT(ctx, im, recordAddr, programID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: no record for %s", chain.ErrInvariantViolated, mint)
	}
	if record.Mint != mint {
		return fmt.Errorf("%w: record at %s describes %s", chain.ErrInvariantViolated, recordAddr, record.Mint)
	}
	m, exists, err := ledger.GetMint(ctx, im, mint)
	if err != nil {
		return err
	}
	if !exists || m.Supply != 1 || m.HasAuthority || m.Decimals != 0 {
		return fmt.Errorf("%w: mint %s is not a frozen single unit", chain.ErrInvariantViolated, mint)
	}
	holder, err := pda.AssociatedCustody(record.Owner, mint)
	if err != nil {
		return err
	}
	balance, err := ledger.Balance(ctx, im, holder, mint)
	if err != nil {
		return err
	}
	if balance != 1 {
		return fmt.Errorf(
			"%w: record owner %s holds %d units of %s",
			chain.ErrInvariantViolated,
			record.Owner,
			balance,
			mint,
		)
	}
	return nil
}
