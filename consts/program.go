// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name   = "musicvm"
	Symbol = "MNFT"

	// DefaultProgramID is the address the music NFT program is deployed at
	// unless genesis overrides it.
	DefaultProgramID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkgmt5yqE6PqL"

	// Well-known program and sysvar addresses.
	SystemProgramID          = "11111111111111111111111111111111"
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	RentSysvarID             = "SysvarRent111111111111111111111111111111111"
)

// Seeds used to derive program-owned addresses.
var (
	MusicNFTSeed = []byte("music-nft")
	ConfigSeed   = []byte("config")
)

// Note: Registry will error during initialization if a duplicate ID is assigned. We explicitly assign IDs to avoid accidental remapping.
const (
	InitializeID   uint8 = 0
	MintMusicNFTID uint8 = 1
	TransferNFTID  uint8 = 2
)

const (
	ED25519ID uint8 = 0
)
