// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/tstate"
	"github.com/ava-labs/musicvm/utils"
)

// CreateActionID derives a unique, but nonrandom, identifier for the
// instruction at [idx] of [txID].
func CreateActionID(txID ids.ID, idx uint8) ids.ID {
	actionBytes := make([]byte, consts.IDLen+consts.Uint8Len)
	copy(actionBytes, txID[:])
	actionBytes[consts.IDLen] = idx
	return utils.ToID(actionBytes)
}

// Execute runs every instruction of [t] inside one view of [ts]. [scope]
// holds the pre-execution value of every key in [t.StateKeys].
//
// A failed instruction reverts all instructions of the transaction and is
// reported in the returned [Result]. The error is only non-nil when
// execution cannot continue safely (an invariant was broken).
func (t *Transaction) Execute(
	ctx context.Context,
	r Rules,
	ts *tstate.TState,
	scope map[string][]byte,
	timestamp int64,
) (*Result, error) {
	if err := t.SyntacticVerify(r); err != nil {
		return NewFailure(t.id, err), nil
	}
	tsv := ts.NewView(t.StateKeys(), scope)
	outputs := make([][]byte, 0, len(t.Instructions))
	for i, ins := range t.Instructions {
		actionOutputs, err := ins.Action.Execute(ctx, r, tsv, timestamp, ins.Accounts, CreateActionID(t.id, uint8(i)))
		if err != nil {
			tsv.Rollback(ctx, 0)
			if errors.Is(err, ErrInvariantViolated) {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			return NewFailure(t.id, fmt.Errorf("instruction %d: %w", i, err)), nil
		}
		outputs = append(outputs, actionOutputs...)
	}
	tsv.Commit()
	return &Result{
		TxID:    t.id,
		Success: true,
		Outputs: outputs,
	}, nil
}
