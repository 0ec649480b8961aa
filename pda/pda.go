// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pda derives program-owned addresses. A derived address is the
// SHA-256 of the seeds, a bump byte, the owning program id and a fixed
// marker, and is guaranteed to fall off the ed25519 curve so that no private
// key can ever sign for it.
package pda

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/crypto/ed25519"
)

var (
	ErrAddressMismatch = errors.New("address mismatch")
	ErrOnCurve         = errors.New("derived address is on curve")
	ErrNoBump          = errors.New("unable to find a viable bump")
)

// Find returns the canonical address for [seeds] under [programID] and the
// bump that produced it. Bumps are probed from 255 downward.
func Find(seeds [][]byte, programID codec.Address) (codec.Address, uint8, error) {
	addr, bump, err := common.FindProgramAddress(seeds, common.PublicKey(programID))
	if err != nil {
		return codec.EmptyAddress, 0, fmt.Errorf("%w: %w", ErrNoBump, err)
	}
	derived := codec.Address(addr)
	if ed25519.IsOnCurve(derived) {
		return codec.EmptyAddress, 0, ErrOnCurve
	}
	return derived, bump, nil
}

// Create returns the address for [seeds] with an explicit [bump].
func Create(seeds [][]byte, bump uint8, programID codec.Address) (codec.Address, error) {
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, []byte{bump})
	addr, err := common.CreateProgramAddress(withBump, common.PublicKey(programID))
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("%w: %w", ErrOnCurve, err)
	}
	return codec.Address(addr), nil
}

// Verify recomputes the canonical address for [seeds] and returns its bump if
// it equals [addr].
func Verify(addr codec.Address, seeds [][]byte, programID codec.Address) (uint8, error) {
	expected, bump, err := Find(seeds, programID)
	if err != nil {
		return 0, err
	}
	if expected != addr {
		return 0, fmt.Errorf("%w: expected %s, got %s", ErrAddressMismatch, expected, addr)
	}
	return bump, nil
}

// MusicNFTSeeds are the seeds of the record describing the asset [mint].
func MusicNFTSeeds(mint codec.Address) [][]byte {
	return [][]byte{consts.MusicNFTSeed, mint[:]}
}

// ConfigSeeds are the seeds of the program configuration singleton.
func ConfigSeeds() [][]byte {
	return [][]byte{consts.ConfigSeed}
}

// MusicNFT derives the record address for [mint].
func MusicNFT(mint codec.Address, programID codec.Address) (codec.Address, uint8, error) {
	return Find(MusicNFTSeeds(mint), programID)
}

// Config derives the program configuration address.
func Config(programID codec.Address) (codec.Address, uint8, error) {
	return Find(ConfigSeeds(), programID)
}

// AssociatedCustody returns the custody account that holds units of [mint]
// on behalf of [owner].
func AssociatedCustody(owner, mint codec.Address) (codec.Address, error) {
	addr, _, err := common.FindAssociatedTokenAddress(common.PublicKey(owner), common.PublicKey(mint))
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("%w: %w", ErrNoBump, err)
	}
	return codec.Address(addr), nil
}

// VerifyAssociatedCustody returns [ErrAddressMismatch] unless [addr] is the
// custody account of [owner] for [mint].
func VerifyAssociatedCustody(addr, owner, mint codec.Address) error {
	expected, err := AssociatedCustody(owner, mint)
	if err != nil {
		return err
	}
	if expected != addr {
		return fmt.Errorf("%w: expected custody %s, got %s", ErrAddressMismatch, expected, addr)
	}
	return nil
}
