// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/state"
)

// State
// 0x0/ (accounts)
//   -> [address] => lamports|owner|space|data
//
// Metadata
// 0x1/ (tx)
//   -> [txID] => timestamp|success|kind|message
// 0x2/ (genesis)
//   -> genesis digest

const (
	accountPrefix = 0x0
	txPrefix      = 0x1
	genesisPrefix = 0x2
)

const (
	// AccountChunks bounds the size of any account envelope.
	AccountChunks uint16 = 16

	accountHeaderLen = consts.Uint64Len + codec.AddressLen + consts.IntLen + consts.IntLen

	// AccountOverhead is charged on top of the allocated space when computing
	// the rent exempt minimum.
	AccountOverhead = 128
)

// MaxAccountSpace is the largest data region an account can allocate.
var MaxAccountSpace = int(AccountChunks)*64 - 1 - accountHeaderLen

// RentRules computes the lamports an account must hold to exist.
type RentRules interface {
	RentExemptMinimum(space int) uint64
}

// Account is the envelope stored for every address.
type Account struct {
	Lamports uint64
	Owner    codec.Address
	Space    uint32
	Data     []byte
}

func (a *Account) Size() int {
	return accountHeaderLen + len(a.Data)
}

func (a *Account) Marshal() []byte {
	p := codec.NewWriter(a.Size(), a.Size())
	p.PackUint64(a.Lamports)
	p.PackAddress(a.Owner)
	p.PackInt(a.Space)
	p.PackBytes(a.Data)
	return p.Bytes()
}

func UnmarshalAccount(b []byte) (*Account, error) {
	p := codec.NewReader(b, len(b))
	var a Account
	a.Lamports = p.UnpackUint64(false)
	p.UnpackAddress(false, &a.Owner)
	a.Space = p.UnpackInt(false)
	p.UnpackBytes(int(a.Space), false, &a.Data)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptAccount, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptAccount, len(b)-p.Offset())
	}
	return &a, nil
}

// [accountPrefix] + [address]
func AccountKey(addr codec.Address) (k []byte) {
	k = make([]byte, 1+codec.AddressLen+consts.Uint16Len)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], AccountChunks)
	return
}

// GetAccount returns the account at [addr] and whether it exists.
func GetAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*Account, bool, error) {
	v, err := im.GetValue(ctx, AccountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := UnmarshalAccount(v)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// GetAccountFromDB reads [addr] directly from the database.
func GetAccountFromDB(_ context.Context, db database.KeyValueReader, addr codec.Address) (*Account, bool, error) {
	v, err := db.Get(AccountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	a, err := UnmarshalAccount(v)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func PutAccount(ctx context.Context, mu state.Mutable, addr codec.Address, a *Account) error {
	return mu.Insert(ctx, AccountKey(addr), a.Marshal())
}

// GetBalance returns the lamports held by [addr] (0 if it does not exist).
func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	a, exists, err := GetAccount(ctx, im, addr)
	if err != nil || !exists {
		return 0, err
	}
	return a.Lamports, nil
}

// AddBalance credits [amount] lamports to [addr], creating a system account if
// none exists.
func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	a, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if !exists {
		a = &Account{Owner: SystemProgramID}
	}
	nbal, err := smath.Add(a.Lamports, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not add balance (address=%s, bal=%d, amount=%d)",
			err,
			addr,
			a.Lamports,
			amount,
		)
	}
	a.Lamports = nbal
	return PutAccount(ctx, mu, addr, a)
}

// SubBalance debits [amount] lamports from [addr].
func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	a, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: payer %s does not exist", ErrInsufficientFunds, addr)
	}
	nbal, err := smath.Sub(a.Lamports, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not subtract balance (address=%s, bal=%d, amount=%d)",
			ErrInsufficientFunds,
			addr,
			a.Lamports,
			amount,
		)
	}
	a.Lamports = nbal
	return PutAccount(ctx, mu, addr, a)
}

// CreateAccount allocates [space] bytes at [addr] owned by [owner]. The rent
// exempt minimum is moved from [payer] into the new account.
func CreateAccount(
	ctx context.Context,
	mu state.Mutable,
	r RentRules,
	payer codec.Address,
	addr codec.Address,
	owner codec.Address,
	space int,
) (*Account, error) {
	if space < 0 || space > MaxAccountSpace {
		return nil, fmt.Errorf("%w: space %d exceeds %d", ErrDataTooLarge, space, MaxAccountSpace)
	}
	_, exists, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	rent := r.RentExemptMinimum(space)
	if err := SubBalance(ctx, mu, payer, rent); err != nil {
		return nil, err
	}
	a := &Account{
		Lamports: rent,
		Owner:    owner,
		Space:    uint32(space),
	}
	if err := PutAccount(ctx, mu, addr, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetOwnedAccount returns the account at [addr] if it exists and is owned by
// [owner].
func GetOwnedAccount(ctx context.Context, im state.Immutable, addr codec.Address, owner codec.Address) (*Account, bool, error) {
	a, exists, err := GetAccount(ctx, im, addr)
	if err != nil || !exists {
		return nil, exists, err
	}
	if a.Owner != owner {
		return nil, true, fmt.Errorf("%w: %s is owned by %s", ErrIllegalOwner, addr, a.Owner)
	}
	return a, true, nil
}

// SetAccountData replaces the data of the account at [addr], which must be
// owned by [owner] and large enough to hold [data].
func SetAccountData(ctx context.Context, mu state.Mutable, addr codec.Address, owner codec.Address, data []byte) error {
	a, exists, err := GetOwnedAccount(ctx, mu, addr, owner)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if len(data) > int(a.Space) {
		return fmt.Errorf("%w: %d > %d", ErrDataTooLarge, len(data), a.Space)
	}
	a.Data = data
	return PutAccount(ctx, mu, addr, a)
}
