// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/consts"
)

const ED25519Key = "ed25519"

// NewEngines returns the batch verification engines for every supported auth
// type.
func NewEngines() Engines {
	return Engines{
		consts.ED25519ID: &ED25519AuthEngine{},
	}
}

type Engines map[uint8]chain.AuthEngine

func (e Engines) GetAuthBatchVerifier(authTypeID uint8, cores int, count int) (chain.AuthBatchVerifier, bool) {
	engine, ok := e[authTypeID]
	if !ok {
		return nil, false
	}
	return engine.GetBatchVerifier(cores, count), true
}
