// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/spf13/cobra"

	"github.com/ava-labs/musicvm/crypto/ed25519"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a new ED25519 key, optionally saving it to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if len(args) == 1 {
			if err := os.WriteFile(args[0], []byte(key.Hex()), perms.ReadWrite); err != nil {
				return fmt.Errorf("failed to write key: %w", err)
			}
		}
		return printValue(cmd, keyResponse{
			Address:    key.PublicKey().String(),
			PrivateKey: key.Hex(),
		})
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print current key address",
	RunE: func(cmd *cobra.Command, _ []string) error {
		factory, err := loadFactory(cmd, "key")
		if err != nil {
			return err
		}
		return printValue(cmd, keyResponse{Address: factory.Address().String()})
	},
}

type keyResponse struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey,omitempty"`
}

func (r keyResponse) String() string {
	if len(r.PrivateKey) == 0 {
		return r.Address
	}
	return fmt.Sprintf("address: {{yellow}}%s{{/}}\nprivate key: %s", r.Address, r.PrivateKey)
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, addressCmd)
	rootCmd.AddCommand(keyCmd)
}
