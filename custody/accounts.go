// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
)

const (
	MintSpace         = consts.BoolLen + codec.AddressLen + consts.Uint64Len + consts.Uint8Len
	TokenAccountSpace = codec.AddressLen + codec.AddressLen + consts.Uint64Len
)

// Mint describes a token. Every music NFT has its own mint with a supply of
// exactly one unit.
type Mint struct {
	HasAuthority  bool
	MintAuthority codec.Address
	Supply        uint64
	Decimals      uint8
}

func (m *Mint) Marshal() []byte {
	p := codec.NewWriter(MintSpace, MintSpace)
	p.PackBool(m.HasAuthority)
	p.PackAddress(m.MintAuthority)
	p.PackUint64(m.Supply)
	p.PackByte(m.Decimals)
	return p.Bytes()
}

func UnmarshalMint(b []byte) (*Mint, error) {
	p := codec.NewReader(b, MintSpace)
	var m Mint
	m.HasAuthority = p.UnpackBool()
	p.UnpackAddress(false, &m.MintAuthority)
	m.Supply = p.UnpackUint64(false)
	m.Decimals = p.UnpackByte()
	return &m, p.Err()
}

// TokenAccount holds units of [Mint] on behalf of [Owner].
type TokenAccount struct {
	Mint   codec.Address
	Owner  codec.Address
	Amount uint64
}

func (t *TokenAccount) Marshal() []byte {
	p := codec.NewWriter(TokenAccountSpace, TokenAccountSpace)
	p.PackAddress(t.Mint)
	p.PackAddress(t.Owner)
	p.PackUint64(t.Amount)
	return p.Bytes()
}

func UnmarshalTokenAccount(b []byte) (*TokenAccount, error) {
	p := codec.NewReader(b, TokenAccountSpace)
	var t TokenAccount
	p.UnpackAddress(false, &t.Mint)
	p.UnpackAddress(false, &t.Owner)
	t.Amount = p.UnpackUint64(false)
	return &t, p.Err()
}
