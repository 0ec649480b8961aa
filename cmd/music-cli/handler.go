// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/spf13/cobra"

	"github.com/ava-labs/musicvm/auth"
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/config"
	"github.com/ava-labs/musicvm/crypto/ed25519"
	"github.com/ava-labs/musicvm/genesis"
	"github.com/ava-labs/musicvm/utils"
	"github.com/ava-labs/musicvm/vm"
)

const dataDir = ".music-cli"

var ErrMissingKey = errors.New("a private key is required (use --key)")

// handler owns the vm opened for a single command.
type handler struct {
	vm     *vm.VM
	log    logging.Logger
	closer func() error
}

func (h *handler) Close() error {
	errs := wrappers.Errs{}
	errs.Add(h.vm.Close())
	h.log.Stop()
	errs.Add(h.closer())
	return errs.Err
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()
	configPath, _ := cmd.Flags().GetString("config")
	if len(configPath) > 0 {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// Without an explicit database the cli persists to its data directory.
	dbPath, _ := cmd.Flags().GetString("db")
	switch {
	case len(dbPath) > 0:
		cfg.DatabaseKind = config.PebbleDB
		cfg.DatabasePath = dbPath
	case len(configPath) == 0:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path, err := utils.InitSubDirectory(filepath.Join(home, dataDir), "db")
		if err != nil {
			return nil, err
		}
		cfg.DatabaseKind = config.PebbleDB
		cfg.DatabasePath = path
	}
	return cfg, cfg.Verify()
}

func loadGenesis(cmd *cobra.Command) (*genesis.Genesis, error) {
	path, _ := cmd.Flags().GetString("genesis")
	if len(path) == 0 {
		return genesis.Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis: %w", err)
	}
	return genesis.Load(b)
}

func loadChainID(cmd *cobra.Command) (ids.ID, error) {
	s, _ := cmd.Flags().GetString("chain-id")
	if len(s) == 0 {
		return ids.Empty, nil
	}
	return ids.FromString(s)
}

// openVM opens the database and vm described by the persistent flags.
func openVM(ctx context.Context, cmd *cobra.Command) (*handler, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	g, err := loadGenesis(cmd)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cmd)
	if err != nil {
		return nil, fmt.Errorf("invalid chain id: %w", err)
	}
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return nil, err
	}
	log, logCloser, err := newLogger(cfg, isJSON)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseKind == config.PebbleDB {
		if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
			return nil, fmt.Errorf("%w: failed to set fd limit correctly", err)
		}
	}
	db, _, err := vm.OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	v, err := vm.New(ctx, cfg, g, chainID, db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &handler{vm: v, log: log, closer: logCloser.Close}, nil
}

// withVM runs [f] against a freshly opened vm and closes it afterwards.
func withVM(cmd *cobra.Command, f func(context.Context, *vm.VM) error) error {
	ctx := context.Background()
	h, err := openVM(ctx, cmd)
	if err != nil {
		return err
	}
	ferr := f(ctx, h.vm)
	if err := h.Close(); err != nil && ferr == nil {
		return err
	}
	return ferr
}

// privateKeyFromString accepts either a hex key or a file holding one.
func privateKeyFromString(s string) (ed25519.PrivateKey, error) {
	if key, err := ed25519.HexToPrivateKey(s); err == nil {
		return key, nil
	}
	return ed25519.LoadKey(s)
}

func loadFactory(cmd *cobra.Command, flag string) (*auth.ED25519Factory, error) {
	keyString, _ := cmd.Flags().GetString(flag)
	if len(keyString) == 0 {
		return nil, fmt.Errorf("%w: --%s is empty", ErrMissingKey, flag)
	}
	key, err := privateKeyFromString(keyString)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return auth.NewED25519Factory(key), nil
}

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

func printValue(cmd *cobra.Command, v fmt.Stringer) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}
	if !isJSON {
		utils.Outf(v.String() + "\n")
		return nil
	}
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// resultResponse reports a submitted transaction.
type resultResponse struct {
	*chain.Result
}

func (r resultResponse) String() string {
	if r.Success {
		return fmt.Sprintf("{{green}}✅ transaction succeeded{{/}} txID={{yellow}}%s{{/}}", r.TxID)
	}
	return fmt.Sprintf("{{red}}❌ transaction failed{{/}} txID={{yellow}}%s{{/}} kind=%s error=%s", r.TxID, r.Kind, r.Error)
}

func printResult(cmd *cobra.Command, result *chain.Result) error {
	if err := printValue(cmd, resultResponse{result}); err != nil {
		return err
	}
	return result.Err()
}
