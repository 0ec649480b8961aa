// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

const (
	signerFlag   byte = 1
	writableFlag byte = 1 << 1

	AccountMetaLen = codec.AddressLen + consts.ByteLen
)

// AccountMeta is a single entry in an instruction's account list.
type AccountMeta struct {
	Address    codec.Address `json:"address"`
	IsSigner   bool          `json:"isSigner"`
	IsWritable bool          `json:"isWritable"`
}

func Signer(addr codec.Address) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: true, IsWritable: true}
}

func Writable(addr codec.Address) AccountMeta {
	return AccountMeta{Address: addr, IsWritable: true}
}

func ReadOnly(addr codec.Address) AccountMeta {
	return AccountMeta{Address: addr}
}

// Permissions returns the state permissions granted on the account key.
func (m AccountMeta) Permissions() state.Permissions {
	if m.IsWritable {
		return state.All
	}
	return state.Read
}

func (m AccountMeta) flags() byte {
	var f byte
	if m.IsSigner {
		f |= signerFlag
	}
	if m.IsWritable {
		f |= writableFlag
	}
	return f
}

func (m AccountMeta) Marshal(p *codec.Packer) {
	p.PackAddress(m.Address)
	p.PackByte(m.flags())
}

func UnmarshalAccountMeta(p *codec.Packer) AccountMeta {
	var m AccountMeta
	p.UnpackAddress(false, &m.Address)
	f := p.UnpackByte()
	m.IsSigner = f&signerFlag != 0
	m.IsWritable = f&writableFlag != 0
	return m
}

// Accounts is the ordered account list an instruction operates on. Handlers
// address accounts by position.
type Accounts []AccountMeta

// Expect returns [ErrMissingAccounts] if fewer than [n] accounts are present.
func (a Accounts) Expect(n int) error {
	if len(a) < n {
		return fmt.Errorf("%w: expected %d, got %d", ErrMissingAccounts, n, len(a))
	}
	return nil
}

// Signer returns the address at [i] and errors unless the account signed.
func (a Accounts) Signer(i int) (codec.Address, error) {
	if !a[i].IsSigner {
		return codec.EmptyAddress, fmt.Errorf("%w: account %d (%s) must sign", ErrUnauthorized, i, a[i].Address)
	}
	return a[i].Address, nil
}

// Writable returns the address at [i] and errors unless the account is
// writable.
func (a Accounts) Writable(i int) (codec.Address, error) {
	if !a[i].IsWritable {
		return codec.EmptyAddress, fmt.Errorf("%w: account %d (%s) must be writable", ErrUnauthorized, i, a[i].Address)
	}
	return a[i].Address, nil
}

// Address returns the address at [i].
func (a Accounts) Address(i int) codec.Address {
	return a[i].Address
}

// ExpectAddress returns [ErrAddressMismatch] unless the account at [i] is
// [expected].
func (a Accounts) ExpectAddress(i int, expected codec.Address) error {
	if a[i].Address != expected {
		return fmt.Errorf("%w: account %d is %s, expected %s", ErrAddressMismatch, i, a[i].Address, expected)
	}
	return nil
}

// StateKeys returns the account keys touched by the list with the
// permissions granted by each entry's writable flag.
func (a Accounts) StateKeys() state.Keys {
	keys := make(state.Keys, len(a))
	for _, m := range a {
		keys.Add(string(storage.AccountKey(m.Address)), m.Permissions())
	}
	return keys
}

// Addresses returns the distinct addresses in the list.
func (a Accounts) Addresses() set.Set[codec.Address] {
	s := set.NewSet[codec.Address](len(a))
	for _, m := range a {
		s.Add(m.Address)
	}
	return s
}
