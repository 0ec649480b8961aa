// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"
)

// Result is returned to the submitter of every processed transaction.
type Result struct {
	TxID    ids.ID    `json:"txId"`
	Success bool      `json:"success"`
	Kind    ErrorKind `json:"kind"`
	Error   string    `json:"error,omitempty"`
	Outputs [][]byte  `json:"outputs,omitempty"`
}

// Err returns the failure as an error (nil on success).
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return &ExecutionError{Kind: r.Kind, Message: r.Error}
}

// ExecutionError describes a failed transaction.
type ExecutionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// NewFailure records [err] as the outcome of [txID].
func NewFailure(txID ids.ID, err error) *Result {
	return &Result{
		TxID:  txID,
		Kind:  KindOf(err),
		Error: err.Error(),
	}
}
