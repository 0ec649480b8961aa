// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/musicvm/actions"
	"github.com/ava-labs/musicvm/auth"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/crypto/ed25519"
	"github.com/ava-labs/musicvm/vm"
)

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the program configuration with --key as its authority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		initializer, err := loadFactory(cmd, "key")
		if err != nil {
			return err
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			result, err := v.Initialize(ctx, initializer)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		})
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a music NFT to --key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		artist, err := loadFactory(cmd, "key")
		if err != nil {
			return err
		}
		mint, err := mintFactory(cmd)
		if err != nil {
			return err
		}
		nft := &actions.MintMusicNFT{}
		if nft.Title, err = cmd.Flags().GetString("title"); err != nil {
			return err
		}
		if nft.Artist, err = cmd.Flags().GetString("artist"); err != nil {
			return err
		}
		if nft.Description, err = cmd.Flags().GetString("description"); err != nil {
			return err
		}
		if nft.MetadataURI, err = cmd.Flags().GetString("uri"); err != nil {
			return err
		}
		if nft.RoyaltyPercentage, err = cmd.Flags().GetUint8("royalty"); err != nil {
			return err
		}

		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			result, err := v.Mint(ctx, artist, mint, nft)
			if err != nil {
				return err
			}
			if err := printValue(cmd, mintResponse{
				resultResponse: resultResponse{result},
				Mint:           mint.Address(),
			}); err != nil {
				return err
			}
			return result.Err()
		})
	},
}

// mintFactory signs for the mint account. A fresh key is generated unless
// one is supplied.
func mintFactory(cmd *cobra.Command) (*auth.ED25519Factory, error) {
	if s, _ := cmd.Flags().GetString("mint-key"); len(s) > 0 {
		return loadFactory(cmd, "mint-key")
	}
	key, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint key: %w", err)
	}
	return auth.NewED25519Factory(key), nil
}

type mintResponse struct {
	resultResponse
	Mint codec.Address `json:"mint"`
}

func (r mintResponse) String() string {
	return fmt.Sprintf("%s\nmint: {{cyan}}%s{{/}}", r.resultResponse.String(), r.Mint)
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer a music NFT held by --key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		owner, err := loadFactory(cmd, "key")
		if err != nil {
			return err
		}
		to, err := addressFlag(cmd, "to")
		if err != nil {
			return err
		}
		mint, err := addressFlag(cmd, "mint")
		if err != nil {
			return err
		}
		amount, err := cmd.Flags().GetUint64("amount")
		if err != nil {
			return err
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			result, err := v.Transfer(ctx, owner, to, mint, amount)
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		})
	},
}

func addressFlag(cmd *cobra.Command, flag string) (codec.Address, error) {
	s, err := cmd.Flags().GetString(flag)
	if err != nil {
		return codec.EmptyAddress, err
	}
	addr, err := codec.ParseAddress(s)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return addr, nil
}

func init() {
	mintCmd.Flags().String("title", "", "Track title")
	mintCmd.Flags().String("artist", "", "Artist name")
	mintCmd.Flags().String("description", "", "Track description")
	mintCmd.Flags().String("uri", "", "Metadata URI")
	mintCmd.Flags().Uint8("royalty", 0, "Royalty percentage (0-100)")
	mintCmd.Flags().String("mint-key", "", "Private key of the mint account (generated when empty)")

	transferCmd.Flags().String("to", "", "Address of the new owner")
	transferCmd.Flags().String("mint", "", "Mint address of the NFT")
	transferCmd.Flags().Uint64("amount", 1, "Units to transfer")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("mint")

	rootCmd.AddCommand(initializeCmd, mintCmd, transferCmd)
}
