// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/musicvm/actions"
	"github.com/ava-labs/musicvm/auth"
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/config"
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/executor"
	"github.com/ava-labs/musicvm/genesis"
	"github.com/ava-labs/musicvm/lockmap"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/storage"
	"github.com/ava-labs/musicvm/tstate"
)

var _ chain.Parser = (*VM)(nil)

// VM executes transactions against a key-value store. Transactions touching
// disjoint accounts run concurrently; conflicting ones run in the order they
// were submitted.
type VM struct {
	config  *config.Config
	genesis *genesis.Genesis
	rules   *genesis.Rules
	log     logging.Logger
	db      Database

	registry *prometheus.Registry
	metrics  *Metrics

	locks  *lockmap.Lockmap
	ledger custody.Ledger

	actionRegistry *codec.TypeParser[chain.Action]
	authRegistry   *codec.TypeParser[chain.Auth]
	authEngines    auth.Engines

	clock         mockable.Clock
	lastTimestamp atomic.Int64

	// Held for reading by every batch so [VM.Close] waits for them.
	closeLock sync.RWMutex
	closed    bool
}

// New returns a vm over [db], applying [g] if [db] is empty. [db] is owned
// by the vm and closed by [VM.Close].
func New(
	ctx context.Context,
	cfg *config.Config,
	g *genesis.Genesis,
	chainID ids.ID,
	db Database,
	log logging.Logger,
) (*VM, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	rules, err := genesis.New(g, chainID)
	if err != nil {
		return nil, err
	}
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	actionRegistry, authRegistry, err := NewRegistries()
	if err != nil {
		return nil, err
	}
	vm := &VM{
		config:         cfg,
		genesis:        g,
		rules:          rules,
		log:            log,
		db:             db,
		registry:       registry,
		metrics:        metrics,
		locks:          lockmap.New(1_024),
		ledger:         custody.NewTokenProgram(rules),
		actionRegistry: actionRegistry,
		authRegistry:   authRegistry,
		authEngines:    auth.NewEngines(),
	}
	if err := vm.initializeGenesis(ctx); err != nil {
		return nil, err
	}
	vm.log.Info("initialized vm",
		zap.Stringer("chainID", chainID),
		zap.Stringer("programID", rules.GetProgramID()),
		zap.Int("parallelism", cfg.Parallelism),
		zap.Bool("verifyInvariants", cfg.VerifyInvariants),
	)
	return vm, nil
}

func (vm *VM) initializeGenesis(ctx context.Context) error {
	b, err := json.Marshal(vm.genesis)
	if err != nil {
		return err
	}
	digest := hashing.ComputeHash256(b)
	initialized, err := storage.CheckGenesis(vm.db, digest)
	if err != nil {
		return err
	}
	if initialized {
		vm.log.Debug("genesis already applied")
		return nil
	}
	batch := vm.db.NewBatch()
	supply, err := vm.genesis.InitializeState(ctx, &dbState{r: vm.db, w: batch})
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	if err := storage.SetGenesis(batch, digest); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	vm.log.Info("applied genesis",
		zap.Int("allocations", len(vm.genesis.CustomAllocation)),
		zap.Uint64("supply", supply),
	)
	return nil
}

// Registry exposes the vm metrics.
func (vm *VM) Registry() *prometheus.Registry {
	return vm.registry
}

// Submit processes a single transaction. See [VM.SubmitBatch].
func (vm *VM) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	results, err := vm.SubmitBatch(ctx, []*chain.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// SubmitBatch verifies and executes [txs], returning one result per
// transaction. A failed transaction only affects its own result. The error
// is non-nil only when the vm could not continue (storage failure or a broken
// invariant), in which case the vm should be shut down.
func (vm *VM) SubmitBatch(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error) {
	vm.closeLock.RLock()
	defer vm.closeLock.RUnlock()
	if vm.closed {
		return nil, ErrClosed
	}
	start := time.Now()
	vm.metrics.txsSubmitted.Add(float64(len(txs)))

	authStart := time.Now()
	authErrs := auth.VerifyTransactions(ctx, vm.authEngines, vm.config.Parallelism, txs)
	vm.metrics.authVerify.Observe(float64(time.Since(authStart)))

	results := make([]*chain.Result, len(txs))
	e := executor.New(len(txs), vm.config.Parallelism)
	for i, tx := range txs {
		e.Run(vm.lockKeys(tx), func() error {
			result, err := vm.process(ctx, tx, authErrs[i])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := e.Wait(); err != nil {
		vm.log.Error("batch processing stopped", zap.Error(err))
		return nil, err
	}
	vm.metrics.batchExecute.Observe(float64(time.Since(start)))
	return results, nil
}

// lockKeys is every key [tx] touches, plus its result key so that duplicates
// are serialized.
func (*VM) lockKeys(tx *chain.Transaction) state.Keys {
	keys := maps.Clone(tx.StateKeys())
	keys.Add(string(storage.TxKey(tx.ID())), state.Write)
	return keys
}

func (vm *VM) process(ctx context.Context, tx *chain.Transaction, authErr error) (*chain.Result, error) {
	unlock := vm.locks.LockKeys(vm.lockKeys(tx))
	defer unlock()

	txID := tx.ID()
	seen, err := storage.HasTransaction(ctx, vm.db, txID)
	if err != nil {
		return nil, err
	}
	if seen {
		vm.metrics.txsDuplicate.Inc()
		vm.log.Debug("dropping duplicate tx", zap.Stringer("txID", txID))
		return chain.NewFailure(txID, chain.ErrDuplicateTx), nil
	}

	timestamp := vm.clock.Time().UnixMilli()
	batch := vm.db.NewBatch()
	var result *chain.Result
	if authErr != nil {
		result = chain.NewFailure(txID, authErr)
	} else {
		keys := tx.StateKeys()
		scope, err := readScope(vm.db, keys)
		if err != nil {
			return nil, err
		}
		ts := tstate.New(len(keys))
		start := time.Now()
		result, err = tx.Execute(ctx, vm.rules, ts, scope, timestamp)
		vm.metrics.txExecute.Observe(float64(time.Since(start)))
		if err != nil {
			vm.log.Error("tx broke an invariant", zap.Stringer("txID", txID), zap.Error(err))
			return nil, err
		}
		if result.Success {
			if vm.config.VerifyInvariants {
				if err := vm.verifyInvariants(ctx, tx, ts.NewView(keys, scope)); err != nil {
					vm.log.Error("tx broke an invariant", zap.Stringer("txID", txID), zap.Error(err))
					return nil, err
				}
			}
			changes, err := ts.WriteChanges(batch)
			if err != nil {
				return nil, err
			}
			vm.metrics.stateChanges.Add(float64(changes))
		}
	}
	if err := storage.StoreTransaction(ctx, batch, txID, timestamp, result.Success, uint8(result.Kind), result.Error); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, err
	}
	vm.record(tx, result)
	return result, nil
}

// verifyInvariants checks that every asset touched by [tx] is held by the
// owner its record names.
func (vm *VM) verifyInvariants(ctx context.Context, tx *chain.Transaction, im state.Immutable) error {
	for _, ins := range tx.Instructions {
		var mint codec.Address
		switch ins.Action.(type) {
		case *actions.MintMusicNFT:
			mint = ins.Accounts.Address(actions.MintIdentity)
		case *actions.TransferNFT:
			mint = ins.Accounts.Address(actions.TransferMint)
		default:
			continue
		}
		if err := actions.CheckCustodyConsistency(ctx, im, vm.ledger, vm.rules.GetProgramID(), mint); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) record(tx *chain.Transaction, result *chain.Result) {
	if !result.Success {
		vm.metrics.txsFailed.Inc()
		vm.log.Info("tx failed",
			zap.Stringer("txID", tx.ID()),
			zap.Stringer("kind", result.Kind),
			zap.String("error", result.Error),
		)
		return
	}
	vm.metrics.txsSucceeded.Inc()
	for _, ins := range tx.Instructions {
		switch ins.Action.(type) {
		case *actions.Initialize:
			vm.metrics.initialized.Inc()
		case *actions.MintMusicNFT:
			vm.metrics.minted.Inc()
		case *actions.TransferNFT:
			vm.metrics.transferred.Inc()
		}
	}
	vm.log.Debug("tx succeeded",
		zap.Stringer("txID", tx.ID()),
		zap.Int("instructions", len(tx.Instructions)),
	)
}

// Close waits for in-flight batches before closing the database. Later
// submissions fail with [ErrClosed].
func (vm *VM) Close() error {
	vm.closeLock.Lock()
	defer vm.closeLock.Unlock()
	if vm.closed {
		return ErrClosed
	}
	vm.closed = true
	return vm.db.Close()
}
