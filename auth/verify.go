// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/musicvm/chain"
)

// VerifyTransactions checks the signatures of [txs] and returns one error per
// transaction (nil when every signature is valid).
//
// Signatures are first verified in batches per auth type. Batch verification
// only reports that some signature failed, so when it does every
// transaction is re-verified on its own to attribute the failure.
func VerifyTransactions(ctx context.Context, engines Engines, cores int, txs []*chain.Transaction) []error {
	errs := make([]error, len(txs))
	counts := map[uint8]int{}
	for _, tx := range txs {
		for _, a := range tx.Auths {
			counts[a.GetTypeID()]++
		}
	}
	verifiers := make(map[uint8]chain.AuthBatchVerifier, len(counts))
	for typeID, count := range counts {
		if bv, ok := engines.GetAuthBatchVerifier(typeID, cores, count); ok {
			verifiers[typeID] = bv
		}
	}

	var (
		jobs     []func() error
		fallback bool
	)
	for _, tx := range txs {
		msg, err := tx.Digest()
		if err != nil {
			fallback = true
			break
		}
		for _, a := range tx.Auths {
			bv, ok := verifiers[a.GetTypeID()]
			if !ok {
				jobs = append(jobs, func() error { return a.Verify(ctx, msg) })
				continue
			}
			if job := bv.Add(msg, a); job != nil {
				jobs = append(jobs, job)
			}
		}
	}
	if !fallback {
		for _, bv := range verifiers {
			jobs = append(jobs, bv.Done()...)
		}
		g := errgroup.Group{}
		g.SetLimit(max(cores, 1))
		for _, job := range jobs {
			g.Go(job)
		}
		fallback = g.Wait() != nil
	}
	if !fallback {
		return errs
	}
	for i, tx := range txs {
		errs[i] = tx.VerifyAuth(ctx)
	}
	return errs
}
