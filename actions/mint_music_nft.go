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

// Account positions expected by [MintMusicNFT].
const (
	MintArtist = iota
	MintConfig
	MintMusicNFTRecord
	MintIdentity
	MintTokenAccount
	MintTokenProgram
	MintAssociatedTokenProgram
	MintSystemProgram
	MintRent

	mintAccounts
)

var _ chain.Action = (*MintMusicNFT)(nil)

// MintMusicNFT creates the record for a new asset identity and issues its
// single custody unit to the artist.
type MintMusicNFT struct {
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	Description       string `json:"description"`
	MetadataURI       string `json:"metadataUri"`
	RoyaltyPercentage uint8  `json:"royaltyPercentage"`

	ledger custody.Ledger
}

func (*MintMusicNFT) GetTypeID() uint8 {
	return consts.MintMusicNFTID
}

func (*MintMusicNFT) NumAccounts() int {
	return mintAccounts
}

// MintAccounts returns the account list for [artist] minting the asset
// identified by [mint].
func MintAccounts(artist, mint, programID codec.Address) (chain.Accounts, error) {
	config, _, err := pda.Config(programID)
	if err != nil {
		return nil, err
	}
	record, _, err := pda.MusicNFT(mint, programID)
	if err != nil {
		return nil, err
	}
	ata, err := pda.AssociatedCustody(artist, mint)
	if err != nil {
		return nil, err
	}
	return chain.Accounts{
		chain.Signer(artist),
		chain.ReadOnly(config),
		chain.Writable(record),
		chain.Signer(mint),
		chain.Writable(ata),
		chain.ReadOnly(storage.TokenProgramID),
		chain.ReadOnly(storage.AssociatedTokenProgramID),
		chain.ReadOnly(storage.SystemProgramID),
		chain.ReadOnly(storage.RentSysvarID),
	}, nil
}

func (m *MintMusicNFT) verifyFields() error {
	if m.RoyaltyPercentage > storage.MaxRoyalty {
		return fmt.Errorf("%w: got %d", chain.ErrInvalidRoyalty, m.RoyaltyPercentage)
	}
	for _, f := range []struct {
		name  string
		value string
		limit int
	}{
		{"title", m.Title, storage.MaxTitleLen},
		{"artist", m.Artist, storage.MaxArtistLen},
		{"description", m.Description, storage.MaxDescriptionLen},
		{"metadata uri", m.MetadataURI, storage.MaxMetadataURILen},
	} {
		if len(f.value) > f.limit {
			return fmt.Errorf("%w: %s is %d bytes (max %d)", chain.ErrFieldTooLong, f.name, len(f.value), f.limit)
		}
	}
	return nil
}

func (m *MintMusicNFT) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	accounts chain.Accounts,
	_ ids.ID,
) ([][]byte, error) {
	if err := accounts.Expect(mintAccounts); err != nil {
		return nil, err
	}
	programID := r.GetProgramID()
	if _, err := loadConfig(ctx, r, mu, accounts, MintConfig); err != nil {
		return nil, err
	}

	// Signers
	artist, err := accounts.Signer(MintArtist)
	if err != nil {
		return nil, err
	}
	mint, err := accounts.Signer(MintIdentity)
	if err != nil {
		return nil, err
	}
	for _, i := range []int{MintArtist, MintMusicNFTRecord, MintIdentity, MintTokenAccount} {
		if _, err := accounts.Writable(i); err != nil {
			return nil, err
		}
	}

	// Derived accounts
	recordAddr := accounts.Address(MintMusicNFTRecord)
	bump, err := pda.Verify(recordAddr, pda.MusicNFTSeeds(mint), programID)
	if err != nil {
		return nil, err
	}
	ata := accounts.Address(MintTokenAccount)
	if err := pda.VerifyAssociatedCustody(ata, artist, mint); err != nil {
		return nil, err
	}
	if err := expectPrograms(accounts, MintTokenProgram); err != nil {
		return nil, err
	}

	_, exists, err := storage.GetAccount(ctx, mu, recordAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: music nft for mint %s", chain.ErrAlreadyExists, mint)
	}
	if err := m.verifyFields(); err != nil {
		return nil, err
	}

	ledger := ledgerOrDefault(m.ledger, r)
	if err := ledger.CreateMint(ctx, mu, artist, mint, recordAddr); err != nil {
		return nil, err
	}
	if _, err := storage.CreateAccount(ctx, mu, r, artist, recordAddr, programID, storage.MusicNFTSpace); err != nil {
		return nil, err
	}
	record := &storage.MusicNFT{
		Title:             m.Title,
		Artist:            m.Artist,
		Description:       m.Description,
		MetadataURI:       m.MetadataURI,
		Mint:              mint,
		Owner:             artist,
		RoyaltyPercentage: m.RoyaltyPercentage,
		Bump:              bump,
	}
	if err := storage.PutMusicNFT(ctx, mu, recordAddr, programID, record); err != nil {
		return nil, err
	}
	custodyAddr, err := ledger.CreateCustodyAccount(ctx, mu, artist, artist, mint)
	if err != nil {
		return nil, err
	}
	if custodyAddr != ata {
		return nil, fmt.Errorf("%w: ledger created custody %s, expected %s", chain.ErrInvariantViolated, custodyAddr, ata)
	}
	if err := ledger.MintUnit(ctx, mu, ata, mint, recordAddr, 1); err != nil {
		return nil, err
	}
	if err := ledger.RevokeMintAuthority(ctx, mu, mint, recordAddr); err != nil {
		return nil, err
	}
	return [][]byte{recordAddr[:]}, nil
}

func (m *MintMusicNFT) Size() int {
	return codec.StringLen(m.Title) +
		codec.StringLen(m.Artist) +
		codec.StringLen(m.Description) +
		codec.StringLen(m.MetadataURI) +
		consts.Uint8Len
}

func (m *MintMusicNFT) Marshal(p *codec.Packer) {
	p.PackString(m.Title)
	p.PackString(m.Artist)
	p.PackString(m.Description)
	p.PackString(m.MetadataURI)
	p.PackByte(m.RoyaltyPercentage)
}

func UnmarshalMintMusicNFT(p *codec.Packer) (chain.Action, error) {
	var m MintMusicNFT
	m.Title = p.UnpackString(maxDecodedStringLen, false)
	m.Artist = p.UnpackString(maxDecodedStringLen, false)
	m.Description = p.UnpackString(maxDecodedStringLen, false)
	m.MetadataURI = p.UnpackString(maxDecodedStringLen, false)
	m.RoyaltyPercentage = p.UnpackByte()
	return &m, p.Err()
}
