// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/chain/chaintest"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
)

func requireOwner(ctx context.Context, t *testing.T, im state.Immutable, programID, mint, owner codec.Address) {
	require := require.New(t)
	recordAddr, _, err := pda.MusicNFT(mint, programID)
	require.NoError(err)
	record, exists, err := storage.GetMusicNFT(ctx, im, recordAddr, programID)
	require.NoError(err)
	require.True(exists)
	require.Equal(owner, record.Owner)

	ata, err := pda.AssociatedCustody(owner, mint)
	require.NoError(err)
	bal, err := custody.NewTokenProgram(chaintest.NewRules()).Balance(ctx, im, ata, mint)
	require.NoError(err)
	require.Equal(uint64(1), bal)
}

func TestTransferNFT(t *testing.T) {
	e := newEnv(t)
	e.initialize(t)
	alice := e.wallet(t)
	bob := e.wallet(t)
	mint := e.mint(t, alice, sampleNFT())

	aliceToBob, err := TransferAccounts(alice, bob, mint, e.programID)
	require.NoError(t, err)
	bobToAlice, err := TransferAccounts(bob, alice, mint, e.programID)
	require.NoError(t, err)

	tests := []chaintest.ActionTest{
		{
			Name:        "non owner cannot transfer",
			Action:      &TransferNFT{Amount: 1},
			Accounts:    bobToAlice,
			ExpectedErr: chain.ErrUnauthorized,
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				requireOwner(ctx, t, mu, e.programID, mint, alice)
			},
		},
		{
			Name:        "zero amount",
			Action:      &TransferNFT{},
			Accounts:    aliceToBob,
			ExpectedErr: chain.ErrInvalidAmount,
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				requireOwner(ctx, t, mu, e.programID, mint, alice)
			},
		},
		{
			Name:        "amount above one",
			Action:      &TransferNFT{Amount: 2},
			Accounts:    aliceToBob,
			ExpectedErr: chain.ErrInvalidAmount,
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				requireOwner(ctx, t, mu, e.programID, mint, alice)
			},
		},
		{
			Name:     "owner transfers to new owner",
			Action:   &TransferNFT{Amount: 1},
			Accounts: aliceToBob,
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				requireOwner(ctx, t, mu, e.programID, mint, bob)

				from, err := pda.AssociatedCustody(alice, mint)
				require.NoError(t, err)
				bal, err := e.ledger.Balance(ctx, mu, from, mint)
				require.NoError(t, err)
				require.Zero(t, bal)
				require.NoError(t, CheckCustodyConsistency(ctx, mu, e.ledger, e.programID, mint))
			},
		},
		{
			Name:        "previous owner cannot transfer again",
			Action:      &TransferNFT{Amount: 1},
			Accounts:    aliceToBob,
			ExpectedErr: chain.ErrUnauthorized,
		},
		{
			Name:     "new owner transfers back into an existing custody account",
			Action:   &TransferNFT{Amount: 1},
			Accounts: bobToAlice,
			Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
				requireOwner(ctx, t, mu, e.programID, mint, alice)
				require.NoError(t, CheckCustodyConsistency(ctx, mu, e.ledger, e.programID, mint))
			},
		},
	}

	ctx := context.Background()
	for _, tt := range tests {
		tt.Rules = e.rules
		tt.State = e.store
		tt.Timestamp = 1700000000000
		tt.ActionID = ids.Empty
		tt.Run(ctx, t)
	}
}

func TestTransferNFTRejections(t *testing.T) {
	e := newEnv(t)
	e.initialize(t)
	alice := e.wallet(t)
	bob := e.wallet(t)
	mint := e.mint(t, alice, sampleNFT())
	other := e.mint(t, alice, sampleNFT())

	accounts, err := TransferAccounts(alice, bob, mint, e.programID)
	require.NoError(t, err)
	otherRecord, _, err := pda.MusicNFT(other, e.programID)
	require.NoError(t, err)
	with := func(i int, m chain.AccountMeta) chain.Accounts {
		cp := append(chain.Accounts{}, accounts...)
		cp[i] = m
		return cp
	}
	selfAccounts, err := TransferAccounts(alice, alice, mint, e.programID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		accounts chain.Accounts
		err      error
	}{
		{
			name:     "owner did not sign",
			accounts: with(TransferOwner, chain.Writable(alice)),
			err:      chain.ErrUnauthorized,
		},
		{
			name:     "record of another mint",
			accounts: with(TransferMusicNFTRecord, chain.Writable(otherRecord)),
			err:      chain.ErrAddressMismatch,
		},
		{
			name:     "mint not described by record",
			accounts: with(TransferMint, chain.ReadOnly(other)),
			err:      chain.ErrAddressMismatch,
		},
		{
			name:     "unknown mint",
			accounts: mustTransferAccounts(t, alice, bob, newAddress(t), e.programID),
			err:      chain.ErrInvalidArgument,
		},
		{
			name:     "source custody not owned by signer",
			accounts: with(TransferFromTokenAccount, chain.Writable(newAddress(t))),
			err:      chain.ErrAddressMismatch,
		},
		{
			name:     "destination custody not owned by new owner",
			accounts: with(TransferToTokenAccount, chain.Writable(newAddress(t))),
			err:      chain.ErrAddressMismatch,
		},
		{
			name:     "destination custody read only",
			accounts: with(TransferToTokenAccount, chain.ReadOnly(accounts[TransferToTokenAccount].Address)),
			err:      chain.ErrUnauthorized,
		},
		{
			name:     "wrong associated token program",
			accounts: with(TransferAssociatedTokenProgram, chain.ReadOnly(newAddress(t))),
			err:      chain.ErrAddressMismatch,
		},
		{
			name:     "transfer to self",
			accounts: selfAccounts,
			err:      chain.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			before := e.snapshot()
			_, err := e.exec(&TransferNFT{Amount: 1}, tt.accounts)
			require.ErrorIs(err, tt.err)
			require.Equal(before, e.store.Storage)
		})
	}
	requireOwner(e.ctx, t, e.store, e.programID, mint, alice)
	requireOwner(e.ctx, t, e.store, e.programID, other, alice)
}

func mustTransferAccounts(t *testing.T, owner, newOwner, mint, programID codec.Address) chain.Accounts {
	accounts, err := TransferAccounts(owner, newOwner, mint, programID)
	require.NoError(t, err)
	return accounts
}

func TestTransferNFTInsufficientCustody(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	e := newEnv(t)
	e.initialize(t)
	alice := e.wallet(t)
	bob := e.wallet(t)
	mint := e.mint(t, alice, sampleNFT())
	accounts, err := TransferAccounts(alice, bob, mint, e.programID)
	require.NoError(err)

	ledger := custody.NewMockLedger(ctrl)
	ledger.EXPECT().Balance(gomock.Any(), gomock.Any(), accounts.Address(TransferFromTokenAccount), mint).Return(uint64(0), nil)

	before := e.snapshot()
	_, err = e.exec(&TransferNFT{Amount: 1, ledger: ledger}, accounts)
	require.ErrorIs(err, chain.ErrInsufficientCustody)
	require.Equal(chain.KindInsufficientCustody, chain.KindOf(err))
	require.Equal(before, e.store.Storage)
}

func TestMintMusicNFTLedgerSequence(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	e := newEnv(t)
	e.initialize(t)
	artist := e.wallet(t)
	mint := newAddress(t)
	accounts, err := MintAccounts(artist, mint, e.programID)
	require.NoError(err)
	recordAddr := accounts.Address(MintMusicNFTRecord)
	ata := accounts.Address(MintTokenAccount)

	ledger := custody.NewMockLedger(ctrl)
	gomock.InOrder(
		ledger.EXPECT().CreateMint(gomock.Any(), gomock.Any(), artist, mint, recordAddr).Return(nil),
		ledger.EXPECT().CreateCustodyAccount(gomock.Any(), gomock.Any(), artist, artist, mint).Return(ata, nil),
		ledger.EXPECT().MintUnit(gomock.Any(), gomock.Any(), ata, mint, recordAddr, uint64(1)).Return(nil),
		ledger.EXPECT().RevokeMintAuthority(gomock.Any(), gomock.Any(), mint, recordAddr).Return(nil),
	)
	nft := sampleNFT()
	nft.ledger = ledger
	outputs, err := e.exec(nft, accounts)
	require.NoError(err)
	require.Equal([][]byte{recordAddr[:]}, outputs)
}

func TestMintMusicNFTLedgerMisplacedCustody(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	e := newEnv(t)
	e.initialize(t)
	artist := e.wallet(t)
	mint := newAddress(t)
	accounts, err := MintAccounts(artist, mint, e.programID)
	require.NoError(err)

	ledger := custody.NewMockLedger(ctrl)
	ledger.EXPECT().CreateMint(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	ledger.EXPECT().CreateCustodyAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(newAddress(t), nil)
	nft := sampleNFT()
	nft.ledger = ledger

	before := e.snapshot()
	_, err = e.exec(nft, accounts)
	require.ErrorIs(err, chain.ErrInvariantViolated)
	require.Equal(before, e.store.Storage)
}

func TestActionCodec(t *testing.T) {
	require := require.New(t)
	parser := codec.NewTypeParser[chain.Action]()
	require.NoError(parser.Register(&Initialize{}, UnmarshalInitialize))
	require.NoError(parser.Register(&MintMusicNFT{}, UnmarshalMintMusicNFT))
	require.NoError(parser.Register(&TransferNFT{}, UnmarshalTransferNFT))

	nft := sampleNFT()
	p := codec.NewWriter(nft.Size()+1, nft.Size()+1)
	p.PackByte(nft.GetTypeID())
	nft.Marshal(p)
	require.NoError(p.Err())

	action, err := parser.Unmarshal(codec.NewReader(p.Bytes(), len(p.Bytes())))
	require.NoError(err)
	require.Equal(nft, action)

	// Wire strings are bounded well above the record limits.
	nft.Title = string(make([]byte, maxDecodedStringLen+1))
	p = codec.NewWriter(nft.Size(), 4*maxDecodedStringLen)
	nft.Marshal(p)
	_, err = UnmarshalMintMusicNFT(codec.NewReader(p.Bytes(), 4*maxDecodedStringLen))
	require.ErrorIs(err, codec.ErrFieldTooLarge)
}
