// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/spf13/cobra"

	"github.com/ava-labs/musicvm/genesis"
	"github.com/ava-labs/musicvm/utils"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis [file]",
	Short: "Print the genesis, or write it to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGenesis(cmd)
		if err != nil {
			return err
		}
		allocations, err := cmd.Flags().GetStringToString("allocate")
		if err != nil {
			return err
		}
		for addr, amount := range allocations {
			balance, err := utils.ParseBalance(amount)
			if err != nil {
				return fmt.Errorf("invalid allocation for %s: %w", addr, err)
			}
			g.CustomAllocation = append(g.CustomAllocation, &genesis.CustomAllocation{
				Address: addr,
				Balance: balance,
			})
		}
		if err := g.Verify(); err != nil {
			return err
		}

		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal genesis: %w", err)
		}
		if len(args) == 0 {
			fmt.Println(string(b))
			return nil
		}
		if err := os.WriteFile(args[0], b, perms.ReadWrite); err != nil {
			return fmt.Errorf("failed to write genesis: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote genesis to %s\n", args[0])
		return nil
	},
}

func init() {
	genesisCmd.Flags().StringToString("allocate", nil, "Initial balances in SOL (e.g., address1=1.5,address2=10)")
	rootCmd.AddCommand(genesisCmd)
}
