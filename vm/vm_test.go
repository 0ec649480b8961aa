// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/ava-labs/musicvm/actions"
	"github.com/ava-labs/musicvm/auth"
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/config"
	"github.com/ava-labs/musicvm/crypto/ed25519"
	"github.com/ava-labs/musicvm/genesis"
	"github.com/ava-labs/musicvm/storage"
)

const initialBalance = 1_000_000_000_000

type testEnv struct {
	vm      *VM
	db      Database
	genesis *genesis.Genesis
	chainID ids.ID
	alice   *auth.ED25519Factory
	bob     *auth.ED25519Factory
	carol   *auth.ED25519Factory
}

func newFactory(t *testing.T) *auth.ED25519Factory {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func sampleNFT() *actions.MintMusicNFT {
	return &actions.MintMusicNFT{
		Title:             "Test Song",
		Artist:            "Test Artist",
		Description:       "A test music NFT",
		MetadataURI:       "https://example.com/metadata.json",
		RoyaltyPercentage: 10,
	}
}

func newTestEnv(t *testing.T, modify func(*config.Config)) *testEnv {
	require := require.New(t)
	env := &testEnv{
		db:      memdb.New(),
		genesis: genesis.Default(),
		chainID: ids.GenerateTestID(),
		alice:   newFactory(t),
		bob:     newFactory(t),
		carol:   newFactory(t),
	}
	for _, f := range []*auth.ED25519Factory{env.alice, env.bob, env.carol} {
		env.genesis.CustomAllocation = append(env.genesis.CustomAllocation, &genesis.CustomAllocation{
			Address: f.Address().String(),
			Balance: initialBalance,
		})
	}
	cfg := config.New()
	cfg.Parallelism = 4
	cfg.VerifyInvariants = true
	if modify != nil {
		modify(cfg)
	}
	vm, err := New(context.Background(), cfg, env.genesis, env.chainID, env.db, logging.NoLog{})
	require.NoError(err)
	env.vm = vm
	return env
}

func requireSuccess(t *testing.T, result *chain.Result, err error) {
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.True(t, result.Success)
}

func requireFailure(t *testing.T, result *chain.Result, err error, kind chain.ErrorKind) {
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, kind, result.Kind)
}

func (env *testEnv) initialize(t *testing.T) {
	result, err := env.vm.Initialize(context.Background(), env.alice)
	requireSuccess(t, result, err)
}

func (env *testEnv) mint(t *testing.T, artist chain.AuthFactory) codec.Address {
	mint := newFactory(t)
	result, err := env.vm.Mint(context.Background(), artist, mint, sampleNFT())
	requireSuccess(t, result, err)
	return mint.Address()
}

func TestGenesis(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)

	bal, err := env.vm.GetBalance(ctx, env.bob.Address())
	require.NoError(err)
	require.Equal(uint64(initialBalance), bal)

	// Reopening the same database does not apply genesis twice.
	reopened, err := New(ctx, config.New(), env.genesis, env.chainID, env.db, logging.NoLog{})
	require.NoError(err)
	bal, err = reopened.GetBalance(ctx, env.bob.Address())
	require.NoError(err)
	require.Equal(uint64(initialBalance), bal)

	other := genesis.Default()
	other.LamportsPerByte++
	_, err = New(ctx, config.New(), other, env.chainID, env.db, logging.NoLog{})
	require.ErrorIs(err, storage.ErrGenesisMismatch)
}

func TestLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)

	initialized, err := env.vm.IsInitialized(ctx)
	require.NoError(err)
	require.False(initialized)
	_, err = env.vm.GetConfig(ctx)
	require.ErrorIs(err, ErrNotInitialized)

	// Mint before initialize fails and is recorded.
	result, err := env.vm.Mint(ctx, env.alice, newFactory(t), sampleNFT())
	require.NoError(err)
	require.False(result.Success)
	require.Equal(chain.KindNotInitialized, result.Kind)
	found, stored, err := env.vm.GetTransaction(ctx, result.TxID)
	require.NoError(err)
	require.True(found)
	require.False(stored.Success)
	require.Equal(uint8(chain.KindNotInitialized), stored.Kind)

	env.initialize(t)
	initialized, err = env.vm.IsInitialized(ctx)
	require.NoError(err)
	require.True(initialized)
	cfg, err := env.vm.GetConfig(ctx)
	require.NoError(err)
	require.Equal(env.alice.Address(), cfg.Authority)

	mint := env.mint(t, env.alice)
	record, exists, err := env.vm.GetMusicNFT(ctx, mint)
	require.NoError(err)
	require.True(exists)
	require.Equal(env.alice.Address(), record.Owner)
	require.Equal("Test Song", record.Title)
	units, err := env.vm.GetCustodyBalance(ctx, env.alice.Address(), mint)
	require.NoError(err)
	require.Equal(uint64(1), units)

	result, err = env.vm.Transfer(ctx, env.alice, env.bob.Address(), mint, 1)
	requireSuccess(t, result, err)
	record, _, err = env.vm.GetMusicNFT(ctx, mint)
	require.NoError(err)
	require.Equal(env.bob.Address(), record.Owner)
	units, err = env.vm.GetCustodyBalance(ctx, env.alice.Address(), mint)
	require.NoError(err)
	require.Zero(units)
	units, err = env.vm.GetCustodyBalance(ctx, env.bob.Address(), mint)
	require.NoError(err)
	require.Equal(uint64(1), units)

	found, stored, err = env.vm.GetTransaction(ctx, result.TxID)
	require.NoError(err)
	require.True(found)
	require.True(stored.Success)
}

func TestFailedTransferHasNoEffect(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.initialize(t)
	mint := env.mint(t, env.alice)

	before, err := env.vm.GetBalance(ctx, env.bob.Address())
	require.NoError(err)

	tests := []struct {
		name   string
		owner  chain.AuthFactory
		to     codec.Address
		amount uint64
		kind   chain.ErrorKind
	}{
		{"non owner", env.bob, env.carol.Address(), 1, chain.KindUnauthorized},
		{"zero amount", env.alice, env.bob.Address(), 0, chain.KindInvalidArgument},
		{"two units", env.alice, env.bob.Address(), 2, chain.KindInvalidArgument},
		{"self transfer", env.alice, env.alice.Address(), 1, chain.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.vm.Transfer(ctx, tt.owner, tt.to, mint, tt.amount)
			requireFailure(t, result, err, tt.kind)
		})
	}

	record, _, err := env.vm.GetMusicNFT(ctx, mint)
	require.NoError(err)
	require.Equal(env.alice.Address(), record.Owner)
	after, err := env.vm.GetBalance(ctx, env.bob.Address())
	require.NoError(err)
	require.Equal(before, after)
}

func TestDuplicateMint(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.initialize(t)

	mint := newFactory(t)
	result, err := env.vm.Mint(ctx, env.alice, mint, sampleNFT())
	requireSuccess(t, result, err)

	// A different artist cannot claim the same identity either.
	result, err = env.vm.Mint(ctx, env.bob, mint, sampleNFT())
	require.NoError(err)
	require.Equal(chain.KindAlreadyExists, result.Kind)
	record, _, err := env.vm.GetMusicNFT(ctx, mint.Address())
	require.NoError(err)
	require.Equal(env.alice.Address(), record.Owner)
}

func TestDuplicateTx(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.initialize(t)

	mint := newFactory(t)
	accounts, err := actions.MintAccounts(env.alice.Address(), mint.Address(), env.vm.Rules().GetProgramID())
	require.NoError(err)
	tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: sampleNFT()}}, env.alice, mint)
	require.NoError(err)

	results, err := env.vm.SubmitBatch(ctx, []*chain.Transaction{tx, tx})
	require.NoError(err)
	requireSuccess(t, results[0], nil)
	require.False(results[1].Success)
	require.Equal(chain.KindInvalidTransaction, results[1].Kind)

	result, err := env.vm.Submit(ctx, tx)
	require.NoError(err)
	require.Equal(chain.KindInvalidTransaction, result.Kind)
}

func TestInvalidSignature(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)

	accounts, err := actions.InitializeAccounts(env.alice.Address(), env.vm.Rules().GetProgramID())
	require.NoError(err)
	tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: &actions.Initialize{}}}, env.alice)
	require.NoError(err)
	tx.Auths[0].(*auth.ED25519).Signature[0] ^= 0xff

	result, err := env.vm.Submit(ctx, tx)
	require.NoError(err)
	require.False(result.Success)
	require.Equal(chain.KindUnauthorized, result.Kind)
	initialized, err := env.vm.IsInitialized(ctx)
	require.NoError(err)
	require.False(initialized)
}

// Signature checks cannot be configured away.
func TestForgedTransferRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	loaded, err := config.Load([]byte(`{"verifyAuth": false}`))
	require.NoError(err)
	env := newTestEnv(t, func(c *config.Config) { *c = *loaded })
	env.initialize(t)
	mint := env.mint(t, env.alice)

	accounts, err := actions.TransferAccounts(env.alice.Address(), env.carol.Address(), mint, env.vm.Rules().GetProgramID())
	require.NoError(err)
	tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: &actions.TransferNFT{Amount: 1}}}, env.alice)
	require.NoError(err)
	tx.Auths[0].(*auth.ED25519).Signature = ed25519.Signature{}

	result, err := env.vm.Submit(ctx, tx)
	requireFailure(t, result, err, chain.KindUnauthorized)
	record, _, err := env.vm.GetMusicNFT(ctx, mint)
	require.NoError(err)
	require.Equal(env.alice.Address(), record.Owner)
}

func TestSubmitBatchOrdersConflicts(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.initialize(t)
	programID := env.vm.Rules().GetProgramID()

	mint := newFactory(t)
	mintAccounts, err := actions.MintAccounts(env.alice.Address(), mint.Address(), programID)
	require.NoError(err)
	toBob, err := actions.TransferAccounts(env.alice.Address(), env.bob.Address(), mint.Address(), programID)
	require.NoError(err)
	toCarol, err := actions.TransferAccounts(env.bob.Address(), env.carol.Address(), mint.Address(), programID)
	require.NoError(err)

	txs := make([]*chain.Transaction, 0, 8)
	tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: mintAccounts, Action: sampleNFT()}}, env.alice, mint)
	require.NoError(err)
	txs = append(txs, tx)
	tx, err = env.vm.NewTx([]*chain.Instruction{{Accounts: toBob, Action: &actions.TransferNFT{Amount: 1}}}, env.alice)
	require.NoError(err)
	txs = append(txs, tx)
	tx, err = env.vm.NewTx([]*chain.Instruction{{Accounts: toCarol, Action: &actions.TransferNFT{Amount: 1}}}, env.bob)
	require.NoError(err)
	txs = append(txs, tx)

	// Unrelated mints by carol run alongside.
	others := make([]codec.Address, 0, 4)
	for i := 0; i < 4; i++ {
		other := newFactory(t)
		accounts, err := actions.MintAccounts(env.carol.Address(), other.Address(), programID)
		require.NoError(err)
		tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: sampleNFT()}}, env.carol, other)
		require.NoError(err)
		txs = append(txs, tx)
		others = append(others, other.Address())
	}

	results, err := env.vm.SubmitBatch(ctx, txs)
	require.NoError(err)
	require.Len(results, len(txs))
	for i, result := range results {
		require.True(result.Success, "tx %d: %s", i, result.Error)
	}
	record, _, err := env.vm.GetMusicNFT(ctx, mint.Address())
	require.NoError(err)
	require.Equal(env.carol.Address(), record.Owner)
	for _, other := range others {
		units, err := env.vm.GetCustodyBalance(ctx, env.carol.Address(), other)
		require.NoError(err)
		require.Equal(uint64(1), units)
	}
}

func TestMultiInstructionAtomicity(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.initialize(t)
	programID := env.vm.Rules().GetProgramID()

	mint := newFactory(t)
	mintAccounts, err := actions.MintAccounts(env.alice.Address(), mint.Address(), programID)
	require.NoError(err)
	bad := sampleNFT()
	bad.RoyaltyPercentage = 150
	other := newFactory(t)
	otherAccounts, err := actions.MintAccounts(env.alice.Address(), other.Address(), programID)
	require.NoError(err)

	tx, err := env.vm.NewTx([]*chain.Instruction{
		{Accounts: mintAccounts, Action: sampleNFT()},
		{Accounts: otherAccounts, Action: bad},
	}, env.alice, mint, other)
	require.NoError(err)
	result, err := env.vm.Submit(ctx, tx)
	require.NoError(err)
	require.False(result.Success)
	require.Equal(chain.KindInvalidArgument, result.Kind)

	_, exists, err := env.vm.GetMusicNFT(ctx, mint.Address())
	require.NoError(err)
	require.False(exists)
	bal, err := env.vm.GetBalance(ctx, env.alice.Address())
	require.NoError(err)
	require.Equal(uint64(initialBalance)-env.vm.rules.RentExemptMinimum(storage.ProgramConfigSpace), bal)
}

func TestParseTx(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, func(c *config.Config) { c.VerifyInvariants = false })

	accounts, err := actions.InitializeAccounts(env.alice.Address(), env.vm.Rules().GetProgramID())
	require.NoError(err)
	tx, err := env.vm.NewTx([]*chain.Instruction{{Accounts: accounts, Action: &actions.Initialize{}}}, env.alice)
	require.NoError(err)

	parsed, err := ParseTx(env.vm, tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Bytes(), parsed.Bytes())

	_, err = ParseTx(env.vm, append(tx.Bytes(), 0))
	require.ErrorIs(err, ErrTrailingBytes)
}

func TestClose(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, nil)

	require.NoError(env.vm.Close())
	_, err := env.vm.Initialize(context.Background(), env.alice)
	require.ErrorIs(err, ErrClosed)
	require.ErrorIs(env.vm.Close(), ErrClosed)
}

// gatedDB parks the first batch created after [armed] is set until [release]
// is closed.
type gatedDB struct {
	Database

	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedDB) NewBatch() database.Batch {
	if g.armed.Load() {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.Database.NewBatch()
}

func TestCloseWaitsForBatch(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	alice := newFactory(t)
	g := genesis.Default()
	g.CustomAllocation = append(g.CustomAllocation, &genesis.CustomAllocation{
		Address: alice.Address().String(),
		Balance: initialBalance,
	})
	db := &gatedDB{
		Database: memdb.New(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	vm, err := New(ctx, config.New(), g, ids.GenerateTestID(), db, logging.NoLog{})
	require.NoError(err)

	db.armed.Store(true)
	type submitted struct {
		result *chain.Result
		err    error
	}
	done := make(chan submitted, 1)
	go func() {
		result, err := vm.Initialize(ctx, alice)
		done <- submitted{result, err}
	}()
	<-db.entered

	closed := make(chan error, 1)
	go func() {
		closed <- vm.Close()
	}()
	require.Never(func() bool { return len(closed) > 0 }, 100*time.Millisecond, 5*time.Millisecond)

	close(db.release)
	s := <-done
	requireSuccess(t, s.result, s.err)
	require.NoError(<-closed)

	_, err = vm.Initialize(ctx, alice)
	require.ErrorIs(err, ErrClosed)
}
