// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted prometheus.Counter
	txsSucceeded prometheus.Counter
	txsFailed    prometheus.Counter
	txsDuplicate prometheus.Counter
	stateChanges prometheus.Counter
	initialized  prometheus.Counter
	minted       prometheus.Counter
	transferred  prometheus.Counter
	authVerify   metric.Averager
	txExecute    metric.Averager
	batchExecute metric.Averager
}

func newMetrics() (*prometheus.Registry, *Metrics, error) {
	r := prometheus.NewRegistry()

	authVerify, err := metric.NewAverager(
		"vm_auth_verify",
		"time spent verifying transaction signatures",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	txExecute, err := metric.NewAverager(
		"vm_tx_execute",
		"time spent executing a transaction",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	batchExecute, err := metric.NewAverager(
		"vm_batch_execute",
		"time spent processing a submitted batch",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs submitted",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "tx_success",
			Help:      "number of txs that executed successfully",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "tx_failed",
			Help:      "number of txs that failed and were reverted",
		}),
		txsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_duplicate",
			Help:      "number of txs rejected because they were already processed",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "state_changes",
			Help:      "number of state keys written",
		}),
		initialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "program",
			Name:      "initialize",
			Help:      "number of successful initialize instructions",
		}),
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "program",
			Name:      "mint",
			Help:      "number of music nfts minted",
		}),
		transferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "program",
			Name:      "transfer",
			Help:      "number of music nft transfers",
		}),
		authVerify:   authVerify,
		txExecute:    txExecute,
		batchExecute: batchExecute,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.txsDuplicate),
		r.Register(m.stateChanges),
		r.Register(m.initialized),
		r.Register(m.minted),
		r.Register(m.transferred),
	)
	return r, m, errs.Err
}
