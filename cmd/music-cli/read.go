// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/storage"
	"github.com/ava-labs/musicvm/utils"
	"github.com/ava-labs/musicvm/vm"
)

var ErrNotFound = errors.New("not found")

var assetCmd = &cobra.Command{
	Use:   "asset [mint]",
	Short: "Print the music NFT record of a mint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			nft, ok, err := v.GetMusicNFT(ctx, mint)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: no music NFT for mint %s", ErrNotFound, mint)
			}
			return printValue(cmd, assetResponse{nft})
		})
	},
}

type assetResponse struct {
	*storage.MusicNFT
}

func (r assetResponse) String() string {
	return fmt.Sprintf(
		"title: {{yellow}}%s{{/}}\nartist: %s\ndescription: %s\nuri: %s\nmint: %s\nowner: {{cyan}}%s{{/}}\nroyalty: %d%%",
		r.Title,
		r.Artist,
		r.Description,
		r.MetadataURI,
		r.Mint,
		r.Owner,
		r.RoyaltyPercentage,
	)
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Print the lamports of an address, or its units of --mint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var addr codec.Address
		if len(args) == 1 {
			parsed, err := codec.ParseAddress(args[0])
			if err != nil {
				return err
			}
			addr = parsed
		} else {
			factory, err := loadFactory(cmd, "key")
			if err != nil {
				return err
			}
			addr = factory.Address()
		}
		mintString, _ := cmd.Flags().GetString("mint")

		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			if len(mintString) == 0 {
				bal, err := v.GetBalance(ctx, addr)
				if err != nil {
					return err
				}
				return printValue(cmd, balanceResponse{Address: addr, Balance: bal, Formatted: utils.FormatBalance(bal)})
			}
			mint, err := codec.ParseAddress(mintString)
			if err != nil {
				return err
			}
			bal, err := v.GetCustodyBalance(ctx, addr, mint)
			if err != nil {
				return err
			}
			return printValue(cmd, balanceResponse{Address: addr, Mint: &mint, Balance: bal})
		})
	},
}

type balanceResponse struct {
	Address   codec.Address  `json:"address"`
	Mint      *codec.Address `json:"mint,omitempty"`
	Balance   uint64         `json:"balance"`
	Formatted string         `json:"formatted,omitempty"`
}

func (r balanceResponse) String() string {
	if r.Mint != nil {
		return fmt.Sprintf("%s holds {{yellow}}%d{{/}} of %s", r.Address, r.Balance, r.Mint)
	}
	return fmt.Sprintf("%s holds {{yellow}}%s{{/}} SOL (%d lamports)", r.Address, r.Formatted, r.Balance)
}

var txStatusCmd = &cobra.Command{
	Use:   "tx [id]",
	Short: "Print the stored result of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := ids.FromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid transaction id: %w", err)
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			found, result, err := v.GetTransaction(ctx, txID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: transaction %s", ErrNotFound, txID)
			}
			return printValue(cmd, txResponse{TxID: txID, TransactionResult: result})
		})
	},
}

type txResponse struct {
	TxID ids.ID `json:"txId"`
	*storage.TransactionResult
}

func (r txResponse) String() string {
	if r.Success {
		return fmt.Sprintf("{{green}}%s succeeded{{/}} at %d", r.TxID, r.Timestamp)
	}
	return fmt.Sprintf("{{red}}%s failed{{/}} at %d kind=%s error=%s", r.TxID, r.Timestamp, chain.ErrorKind(r.Kind), r.Message)
}

func init() {
	balanceCmd.Flags().String("mint", "", "Mint address to report custody units of")
	rootCmd.AddCommand(assetCmd, balanceCmd, txStatusCmd)
}
