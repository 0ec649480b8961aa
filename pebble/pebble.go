// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ database.KeyValueReaderWriterDeleter = (*Database)(nil)
	_ database.Batcher                     = (*Database)(nil)
	_ database.Batch                       = (*batch)(nil)
)

type Config struct {
	CacheSize             int  `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync          int  `json:"bytesPerSync" yaml:"bytesPerSync"`
	WALBytesPerSync       int  `json:"walBytesPerSync" yaml:"walBytesPerSync"`
	MaxOpenFiles          int  `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	L0CompactionThreshold int  `json:"l0CompactionThreshold" yaml:"l0CompactionThreshold"`
	L0StopWritesThreshold int  `json:"l0StopWritesThreshold" yaml:"l0StopWritesThreshold"`
	Sync                  bool `json:"sync" yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:             512 * units.MiB,
		BytesPerSync:          1 * units.MiB,
		WALBytesPerSync:       1 * units.MiB,
		MaxOpenFiles:          4_096,
		L0CompactionThreshold: 8,
		L0StopWritesThreshold: 1_000,
		Sync:                  true,
	}
}

// Database is a pebble instance exposing the key-value surface used by the
// vm. Reads of missing keys return [database.ErrNotFound].
type Database struct {
	db      *pebble.DB
	cache   *pebble.Cache
	sync    bool
	metrics *metrics

	closing chan struct{}
	wg      sync.WaitGroup

	l      sync.RWMutex
	closed bool
}

// New opens (or creates) a database at [file]. The returned registry holds
// the database metrics.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	// These default settings are based on https://github.com/ethereum/go-ethereum/blob/master/ethdb/pebble/pebble.go
	d := &Database{
		cache:   pebble.NewCache(int64(cfg.CacheSize)),
		sync:    cfg.Sync,
		closing: make(chan struct{}),
	}
	registry, metrics, err := newMetrics()
	if err != nil {
		d.cache.Unref()
		return nil, nil, err
	}
	d.metrics = metrics
	opts := &pebble.Options{
		Cache:                 d.cache,
		BytesPerSync:          cfg.BytesPerSync,
		WALBytesPerSync:       cfg.WALBytesPerSync,
		MaxOpenFiles:          cfg.MaxOpenFiles,
		L0CompactionThreshold: cfg.L0CompactionThreshold,
		L0StopWritesThreshold: cfg.L0StopWritesThreshold,
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	d.db, err = pebble.Open(file, opts)
	if err != nil {
		d.cache.Unref()
		return nil, nil, err
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (d *Database) writeOptions() *pebble.WriteOptions {
	if d.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (d *Database) Has(key []byte) (bool, error) {
	_, err := d.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d *Database) Get(key []byte) ([]byte, error) {
	d.l.RLock()
	defer d.l.RUnlock()
	if d.closed {
		return nil, database.ErrClosed
	}

	start := time.Now()
	v, closer, err := d.db.Get(key)
	d.metrics.getLatency.Observe(float64(time.Since(start)))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	value := slices.Clone(v)
	return value, closer.Close()
}

func (d *Database) Put(key []byte, value []byte) error {
	d.l.RLock()
	defer d.l.RUnlock()
	if d.closed {
		return database.ErrClosed
	}
	d.metrics.writes.Inc()
	return d.db.Set(key, value, d.writeOptions())
}

func (d *Database) Delete(key []byte) error {
	d.l.RLock()
	defer d.l.RUnlock()
	if d.closed {
		return database.ErrClosed
	}
	d.metrics.writes.Inc()
	return d.db.Delete(key, d.writeOptions())
}

func (d *Database) NewBatch() database.Batch {
	return &batch{d: d, b: d.db.NewBatch()}
}

func (d *Database) Close() error {
	d.l.Lock()
	if d.closed {
		d.l.Unlock()
		return database.ErrClosed
	}
	d.closed = true
	d.l.Unlock()

	close(d.closing)
	d.wg.Wait()
	err := d.db.Close()
	d.cache.Unref()
	return err
}

type op struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	d    *Database
	b    *pebble.Batch
	ops  []op
	size int
}

func (b *batch) Put(key []byte, value []byte) error {
	b.ops = append(b.ops, op{key: slices.Clone(key), value: slices.Clone(value)})
	b.size += len(key) + len(value)
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: slices.Clone(key), delete: true})
	b.size += len(key)
	return b.b.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	b.d.l.RLock()
	defer b.d.l.RUnlock()
	if b.d.closed {
		return database.ErrClosed
	}
	if err := b.b.Commit(b.d.writeOptions()); err != nil {
		return err
	}
	b.d.metrics.batchWrites.Inc()
	b.d.metrics.batchBytes.Add(float64(b.size))
	return nil
}

func (b *batch) Reset() {
	b.b.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, o := range b.ops {
		var err error
		if o.delete {
			err = w.Delete(o.key)
		} else {
			err = w.Put(o.key, o.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
