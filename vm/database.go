// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/musicvm/config"
	"github.com/ava-labs/musicvm/pebble"
	"github.com/ava-labs/musicvm/state"
)

var _ state.Mutable = (*dbState)(nil)

// Database is the key-value store backing the vm.
type Database interface {
	database.KeyValueReaderWriterDeleter
	database.Batcher
	io.Closer
}

// OpenDatabase opens the database described by [cfg]. The registry holds any
// metrics the database exposes.
func OpenDatabase(cfg *config.Config) (Database, *prometheus.Registry, error) {
	switch cfg.DatabaseKind {
	case config.MemDB:
		return memdb.New(), prometheus.NewRegistry(), nil
	case config.PebbleDB:
		db, registry, err := pebble.New(cfg.DatabasePath, cfg.Pebble)
		if err != nil {
			return nil, nil, err
		}
		return db, registry, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDatabase, cfg.DatabaseKind)
	}
}

// dbState reads from [r] and sends writes to [w].
type dbState struct {
	r database.KeyValueReader
	w database.KeyValueWriterDeleter
}

func (s *dbState) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return s.r.Get(key)
}

func (s *dbState) Insert(_ context.Context, key []byte, value []byte) error {
	return s.w.Put(key, value)
}

func (s *dbState) Remove(_ context.Context, key []byte) error {
	return s.w.Delete(key)
}
