// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/musicvm/pebble"
)

const (
	MemDB    = "memdb"
	PebbleDB = "pebble"
)

var (
	ErrUnknownDatabase     = errors.New("unknown database kind")
	ErrMissingDatabasePath = errors.New("pebble database requires a path")
	ErrInvalidParallelism  = errors.New("parallelism must be positive")
)

type Config struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	LogDir   string `json:"logDir" yaml:"logDir"`

	DatabaseKind string        `json:"databaseKind" yaml:"databaseKind"`
	DatabasePath string        `json:"databasePath" yaml:"databasePath"`
	Pebble       pebble.Config `json:"pebble" yaml:"pebble"`

	// Cores used for signature verification and concurrent execution.
	Parallelism int `json:"parallelism" yaml:"parallelism"`

	// VerifyInvariants re-checks custody consistency after every accepted
	// mint and transfer.
	VerifyInvariants bool `json:"verifyInvariants" yaml:"verifyInvariants"`
}

func New() *Config {
	c := &Config{}
	c.setDefault()
	return c
}

func (c *Config) setDefault() {
	c.LogLevel = logging.Info.String()
	c.DatabaseKind = MemDB
	c.Pebble = pebble.NewDefaultConfig()
	c.Parallelism = max(runtime.NumCPU()/2, 1)
	c.VerifyInvariants = false
}

// Load parses [b] as JSON when it looks like an object and as YAML otherwise.
// Unset fields keep their defaults.
func Load(b []byte) (*Config, error) {
	c := New()
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(trimmed, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml config: %w", err)
		}
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

func (c *Config) Verify() error {
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	switch c.DatabaseKind {
	case MemDB:
	case PebbleDB:
		if len(c.DatabasePath) == 0 {
			return ErrMissingDatabasePath
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDatabase, c.DatabaseKind)
	}
	if c.Parallelism <= 0 {
		return ErrInvalidParallelism
	}
	return nil
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}
