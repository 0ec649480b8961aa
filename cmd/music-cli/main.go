// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "music-cli",
	Short: "CLI for minting and transferring music NFTs",
	Long:  `A CLI application that runs the music NFT program against a local database.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON or YAML vm config")
	rootCmd.PersistentFlags().String("genesis", "", "Path to a genesis file (defaults are used when empty)")
	rootCmd.PersistentFlags().String("db", "", "Database directory (defaults to ~/.music-cli/db)")
	rootCmd.PersistentFlags().String("chain-id", "", "Chain id signed into every transaction")
	rootCmd.PersistentFlags().String("key", "", "Private ED25519 key as hex string or key file")
}

func main() {
	Execute()
}
