// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

const (
	namespace       = "pebble"
	metricsInterval = 10 * time.Second
)

type metrics struct {
	stallStart atomic.Int64
	writeStall metric.Averager
	getLatency metric.Averager

	writes      prometheus.Counter
	batchWrites prometheus.Counter
	batchBytes  prometheus.Counter

	l0Compactions     prometheus.Counter
	otherCompactions  prometheus.Counter
	activeCompactions prometheus.Gauge

	// Sampled from [pebble.DB.Metrics] every [metricsInterval].
	tombstones    prometheus.Gauge
	obsoleteBytes prometheus.Gauge
	zombieBytes   prometheus.Gauge
	obsoleteWAL   prometheus.Gauge
	diskUsage     prometheus.Gauge
	readAmp       prometheus.Gauge
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(namespace+"_write_stall", "time spent waiting for disk write", r)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(namespace+"_read_latency", "time spent waiting for db get", r)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall: writeStall,
		getLatency: getLatency,

		writes:      counter("writes", "number of single key writes and deletes"),
		batchWrites: counter("batch_writes", "number of committed batches"),
		batchBytes:  counter("batch_bytes", "bytes of keys and values committed in batches"),

		l0Compactions:     counter("l0_compactions", "number of l0 compactions"),
		otherCompactions:  counter("other_compactions", "number of l1+ compactions"),
		activeCompactions: gauge("active_compactions", "number of active compactions"),

		tombstones:    gauge("tombstone_count", "approximate count of internal tombstones"),
		obsoleteBytes: gauge("obsolete_table_size", "bytes in tables no longer referenced by the db"),
		zombieBytes:   gauge("zombie_table_size", "bytes in unreferenced tables still held open by iterators"),
		obsoleteWAL:   gauge("obsolete_wal_size", "bytes in WAL files no longer needed by the db"),
		diskUsage:     gauge("disk_usage", "total bytes used by the db on disk"),
		readAmp:       gauge("read_amplification", "sublevels a point read may have to search"),
	}
	errs := wrappers.Errs{}
	for _, c := range []prometheus.Collector{
		m.writes,
		m.batchWrites,
		m.batchBytes,
		m.l0Compactions,
		m.otherCompactions,
		m.activeCompactions,
		m.tombstones,
		m.obsoleteBytes,
		m.zombieBytes,
		m.obsoleteWAL,
		m.diskUsage,
		m.readAmp,
	} {
		errs.Add(r.Register(c))
	}
	return r, m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		db.metrics.l0Compactions.Inc()
		return
	}
	db.metrics.otherCompactions.Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart.Store(time.Now().UnixNano())
}

func (db *Database) onWriteStallEnd() {
	start := db.metrics.stallStart.Load()
	db.metrics.writeStall.Observe(float64(time.Now().UnixNano() - start))
}

func (db *Database) sampleMetrics() {
	stats := db.db.Metrics()
	db.metrics.tombstones.Set(float64(stats.Keys.TombstoneCount))
	db.metrics.obsoleteBytes.Set(float64(stats.Table.ObsoleteSize))
	db.metrics.zombieBytes.Set(float64(stats.Table.ZombieSize))
	db.metrics.obsoleteWAL.Set(float64(stats.WAL.ObsoletePhysicalSize))
	db.metrics.diskUsage.Set(float64(stats.DiskSpaceUsage()))
	db.metrics.readAmp.Set(float64(stats.ReadAmp()))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.sampleMetrics()
		case <-db.closing:
			return
		}
	}
}
