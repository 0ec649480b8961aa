// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

const batchSize = 100_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func newTestDB(t *testing.T) *Database {
	cfg := NewDefaultConfig()
	cfg.CacheSize = 1024 * 1024
	cfg.Sync = false
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	require.NotNil(t, registry)
	return db
}

func TestDatabase(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(err, database.ErrNotFound)
	has, err := db.Has([]byte("missing"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
	has, err = db.Has([]byte("k"))
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete([]byte("k")))
	_, err = db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Close())
	_, err = db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrClosed)
	require.ErrorIs(db.Put([]byte("k"), nil), database.ErrClosed)
	require.ErrorIs(db.Close(), database.ErrClosed)
}

func TestBatch(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	defer func() {
		require.NoError(db.Close())
	}()

	require.NoError(db.Put([]byte("gone"), []byte("soon")))
	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Delete([]byte("gone")))
	require.Equal(8, b.Size())

	// Nothing is visible before the batch is written.
	_, err := db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(b.Write())
	v, err := db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)
	_, err = db.Get([]byte("gone"))
	require.ErrorIs(err, database.ErrNotFound)

	mem := memdb.New()
	require.NoError(mem.Put([]byte("gone"), []byte("soon")))
	require.NoError(b.Replay(mem))
	v, err = mem.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
	has, err := mem.Has([]byte("gone"))
	require.NoError(err)
	require.False(has)

	b.Reset()
	require.Zero(b.Size())
}

func BenchmarkBatchInsertion(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			// Setup DB
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, _, err := New(b.TempDir(), cfg)
			if err != nil {
				b.Fatal(err)
			}

			// Setup keys
			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				batch := db.NewBatch()
				for j := 0; j < batchSize; j++ {
					if err := batch.Put(keys[j], randBytes()); err != nil {
						b.Fatal(err)
					}
				}
				if err := batch.Write(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	cfg.CacheSize = 1024 * 1024
	db, registry, err := New(t.TempDir(), cfg)
	require.NoError(err)
	defer func() {
		require.NoError(db.Close())
	}()

	require.NoError(db.Put([]byte("k"), []byte("v")))
	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Write())
	db.sampleMetrics()

	families, err := registry.Gather()
	require.NoError(err)
	values := make(map[string]float64, len(families))
	for _, f := range families {
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			values[f.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			values[f.GetName()] = m.GetGauge().GetValue()
		}
	}
	require.Equal(float64(1), values["pebble_writes"])
	require.Equal(float64(1), values["pebble_batch_writes"])
	require.Equal(float64(2), values["pebble_batch_bytes"])
	require.Contains(values, "pebble_disk_usage")
}
