// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

var ErrGenesisMismatch = errors.New("database was initialized with a different genesis")

func GenesisKey() []byte {
	return []byte{genesisPrefix}
}

// CheckGenesis reports whether [db] was already initialized. It errors if it
// was initialized with a genesis other than [digest].
func CheckGenesis(db database.KeyValueReader, digest []byte) (bool, error) {
	stored, err := db.Get(GenesisKey())
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !bytes.Equal(stored, digest) {
		return true, ErrGenesisMismatch
	}
	return true, nil
}

func SetGenesis(db database.KeyValueWriter, digest []byte) error {
	return db.Put(GenesisKey(), digest)
}
