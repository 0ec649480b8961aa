// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custody implements the token ledger that holds the single unit
// representing each music NFT.
package custody

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

var _ Ledger = (*TokenProgram)(nil)

// Ledger is the token custody subsystem instruction handlers compose with.
type Ledger interface {
	// CreateMint allocates a zero-decimal mint at [mint] controlled by
	// [authority].
	CreateMint(ctx context.Context, mu state.Mutable, payer, mint, authority codec.Address) error
	// CreateCustodyAccount allocates the associated custody account of
	// [owner] for [mint] and returns its address.
	CreateCustodyAccount(ctx context.Context, mu state.Mutable, payer, owner, mint codec.Address) (codec.Address, error)
	MintUnit(ctx context.Context, mu state.Mutable, custody, mint, authority codec.Address, amount uint64) error
	TransferUnit(ctx context.Context, mu state.Mutable, from, to, mint, authority codec.Address, amount uint64) error
	RevokeMintAuthority(ctx context.Context, mu state.Mutable, mint, authority codec.Address) error

	GetMint(ctx context.Context, im state.Immutable, mint codec.Address) (*Mint, bool, error)
	GetTokenAccount(ctx context.Context, im state.Immutable, custody codec.Address) (*TokenAccount, bool, error)
	// Balance returns the units of [mint] held at [custody] (0 if the account
	// does not exist).
	Balance(ctx context.Context, im state.Immutable, custody, mint codec.Address) (uint64, error)
}

// TokenProgram stores mints and custody accounts as accounts owned by the
// token program.
type TokenProgram struct {
	rules storage.RentRules
}

func NewTokenProgram(rules storage.RentRules) *TokenProgram {
	return &TokenProgram{rules: rules}
}

func (*TokenProgram) GetMint(ctx context.Context, im state.Immutable, mint codec.Address) (*Mint, bool, error) {
	a, exists, err := storage.GetOwnedAccount(ctx, im, mint, storage.TokenProgramID)
	if err != nil || !exists || len(a.Data) == 0 {
		return nil, false, err
	}
	m, err := UnmarshalMint(a.Data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (*TokenProgram) GetTokenAccount(ctx context.Context, im state.Immutable, custody codec.Address) (*TokenAccount, bool, error) {
	a, exists, err := storage.GetOwnedAccount(ctx, im, custody, storage.TokenProgramID)
	if err != nil || !exists || len(a.Data) == 0 {
		return nil, false, err
	}
	t, err := UnmarshalTokenAccount(a.Data)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (tp *TokenProgram) mustGetMint(ctx context.Context, im state.Immutable, mint codec.Address) (*Mint, error) {
	m, exists, err := tp.GetMint(ctx, im, mint)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return m, nil
}

func (tp *TokenProgram) mustGetTokenAccount(ctx context.Context, im state.Immutable, custody, mint codec.Address) (*TokenAccount, error) {
	t, exists, err := tp.GetTokenAccount(ctx, im, custody)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCustodyNotFound, custody)
	}
	if t.Mint != mint {
		return nil, fmt.Errorf("%w: %s holds %s, not %s", ErrMintMismatch, custody, t.Mint, mint)
	}
	return t, nil
}

func (tp *TokenProgram) CreateMint(ctx context.Context, mu state.Mutable, payer, mint, authority codec.Address) error {
	if _, err := storage.CreateAccount(ctx, mu, tp.rules, payer, mint, storage.TokenProgramID, MintSpace); err != nil {
		return err
	}
	m := &Mint{HasAuthority: true, MintAuthority: authority}
	return storage.SetAccountData(ctx, mu, mint, storage.TokenProgramID, m.Marshal())
}

func (tp *TokenProgram) CreateCustodyAccount(ctx context.Context, mu state.Mutable, payer, owner, mint codec.Address) (codec.Address, error) {
	if _, err := tp.mustGetMint(ctx, mu, mint); err != nil {
		return codec.EmptyAddress, err
	}
	addr, err := pda.AssociatedCustody(owner, mint)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if _, err := storage.CreateAccount(ctx, mu, tp.rules, payer, addr, storage.TokenProgramID, TokenAccountSpace); err != nil {
		return codec.EmptyAddress, err
	}
	t := &TokenAccount{Mint: mint, Owner: owner}
	if err := storage.SetAccountData(ctx, mu, addr, storage.TokenProgramID, t.Marshal()); err != nil {
		return codec.EmptyAddress, err
	}
	return addr, nil
}

func (tp *TokenProgram) MintUnit(ctx context.Context, mu state.Mutable, custody, mint, authority codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	m, err := tp.mustGetMint(ctx, mu, mint)
	if err != nil {
		return err
	}
	if !m.HasAuthority {
		return fmt.Errorf("%w: %s", ErrAuthorityRevoked, mint)
	}
	if m.MintAuthority != authority {
		return fmt.Errorf("%w: mint authority is %s, not %s", ErrWrongAuthority, m.MintAuthority, authority)
	}
	t, err := tp.mustGetTokenAccount(ctx, mu, custody, mint)
	if err != nil {
		return err
	}
	supply, err := smath.Add(m.Supply, amount)
	if err != nil {
		return err
	}
	balance, err := smath.Add(t.Amount, amount)
	if err != nil {
		return err
	}
	m.Supply = supply
	t.Amount = balance
	if err := storage.SetAccountData(ctx, mu, mint, storage.TokenProgramID, m.Marshal()); err != nil {
		return err
	}
	return storage.SetAccountData(ctx, mu, custody, storage.TokenProgramID, t.Marshal())
}

func (tp *TokenProgram) TransferUnit(ctx context.Context, mu state.Mutable, from, to, mint, authority codec.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	src, err := tp.mustGetTokenAccount(ctx, mu, from, mint)
	if err != nil {
		return err
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: %s is held by %s, not %s", ErrWrongAuthority, from, src.Owner, authority)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientCustody, from, src.Amount, amount)
	}
	dst, err := tp.mustGetTokenAccount(ctx, mu, to, mint)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	src.Amount -= amount
	nbal, err := smath.Add(dst.Amount, amount)
	if err != nil {
		return err
	}
	dst.Amount = nbal
	if err := storage.SetAccountData(ctx, mu, from, storage.TokenProgramID, src.Marshal()); err != nil {
		return err
	}
	return storage.SetAccountData(ctx, mu, to, storage.TokenProgramID, dst.Marshal())
}

func (tp *TokenProgram) RevokeMintAuthority(ctx context.Context, mu state.Mutable, mint, authority codec.Address) error {
	m, err := tp.mustGetMint(ctx, mu, mint)
	if err != nil {
		return err
	}
	if !m.HasAuthority {
		return fmt.Errorf("%w: %s", ErrAuthorityRevoked, mint)
	}
	if m.MintAuthority != authority {
		return fmt.Errorf("%w: mint authority is %s, not %s", ErrWrongAuthority, m.MintAuthority, authority)
	}
	m.HasAuthority = false
	m.MintAuthority = codec.EmptyAddress
	return storage.SetAccountData(ctx, mu, mint, storage.TokenProgramID, m.Marshal())
}

func (tp *TokenProgram) Balance(ctx context.Context, im state.Immutable, custody, mint codec.Address) (uint64, error) {
	t, exists, err := tp.GetTokenAccount(ctx, im, custody)
	if err != nil || !exists {
		return 0, err
	}
	if t.Mint != mint {
		return 0, fmt.Errorf("%w: %s holds %s, not %s", ErrMintMismatch, custody, t.Mint, mint)
	}
	return t.Amount, nil
}
