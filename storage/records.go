// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/state"
)

const (
	DiscriminatorLen = 8

	MaxTitleLen       = 50
	MaxArtistLen      = 50
	MaxDescriptionLen = 200
	MaxMetadataURILen = 200
	MaxRoyalty        = 100

	// MusicNFTSpace is the fixed allocation of a record: discriminator, four
	// length-prefixed strings at their bound, mint, owner, royalty and bump.
	MusicNFTSpace = DiscriminatorLen +
		consts.IntLen + MaxTitleLen +
		consts.IntLen + MaxArtistLen +
		consts.IntLen + MaxDescriptionLen +
		consts.IntLen + MaxMetadataURILen +
		codec.AddressLen + codec.AddressLen +
		consts.Uint8Len + consts.Uint8Len

	ConfigVersion = 1

	ProgramConfigSpace = DiscriminatorLen + consts.Uint8Len + codec.AddressLen + consts.Uint8Len + consts.Int64Len
)

var (
	MusicNFTDiscriminator      = Discriminator("MusicNFT")
	ProgramConfigDiscriminator = Discriminator("ProgramConfig")
)

// Discriminator is the 8 byte tag that prefixes the data of accounts of type
// [name].
func Discriminator(name string) [DiscriminatorLen]byte {
	h := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorLen]byte
	copy(d[:], h[:DiscriminatorLen])
	return d
}

// MusicNFT is the record describing a single minted asset.
type MusicNFT struct {
	Title             string
	Artist            string
	Description       string
	MetadataURI       string
	Mint              codec.Address
	Owner             codec.Address
	RoyaltyPercentage uint8
	Bump              uint8
}

// ProgramConfig is the versioned singleton written by initialize.
type ProgramConfig struct {
	Version       uint8
	Authority     codec.Address
	Bump          uint8
	InitializedAt int64
}

func encode(d [DiscriminatorLen]byte, v any) ([]byte, error) {
	b, err := borsh.Serialize(v)
	if err != nil {
		return nil, err
	}
	return append(d[:], b...), nil
}

func decode(d [DiscriminatorLen]byte, data []byte, v any) error {
	if len(data) < DiscriminatorLen || !bytes.Equal(data[:DiscriminatorLen], d[:]) {
		return ErrInvalidDiscriminator
	}
	if err := borsh.Deserialize(v, data[DiscriminatorLen:]); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptAccount, err)
	}
	return nil
}

func (m *MusicNFT) Marshal() ([]byte, error) {
	return encode(MusicNFTDiscriminator, *m)
}

func UnmarshalMusicNFT(data []byte) (*MusicNFT, error) {
	var m MusicNFT
	if err := decode(MusicNFTDiscriminator, data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *ProgramConfig) Marshal() ([]byte, error) {
	return encode(ProgramConfigDiscriminator, *c)
}

func UnmarshalProgramConfig(data []byte) (*ProgramConfig, error) {
	var c ProgramConfig
	if err := decode(ProgramConfigDiscriminator, data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetMusicNFT returns the record stored at [addr] if it exists and is owned by
// [programID].
func GetMusicNFT(ctx context.Context, im state.Immutable, addr codec.Address, programID codec.Address) (*MusicNFT, bool, error) {
	a, exists, err := GetOwnedAccount(ctx, im, addr, programID)
	if err != nil || !exists {
		return nil, exists, err
	}
	m, err := UnmarshalMusicNFT(a.Data)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func PutMusicNFT(ctx context.Context, mu state.Mutable, addr codec.Address, programID codec.Address, m *MusicNFT) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return SetAccountData(ctx, mu, addr, programID, data)
}

// GetProgramConfig returns the configuration stored at [addr] if it exists
// and is owned by [programID].
func GetProgramConfig(ctx context.Context, im state.Immutable, addr codec.Address, programID codec.Address) (*ProgramConfig, bool, error) {
	a, exists, err := GetOwnedAccount(ctx, im, addr, programID)
	if err != nil || !exists {
		return nil, exists, err
	}
	c, err := UnmarshalProgramConfig(a.Data)
	if err != nil {
		return nil, true, err
	}
	return c, true, nil
}

func PutProgramConfig(ctx context.Context, mu state.Mutable, addr codec.Address, programID codec.Address, c *ProgramConfig) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return SetAccountData(ctx, mu, addr, programID, data)
}
