// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/musicvm/actions"
	"github.com/ava-labs/musicvm/auth"
	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
)

// NewRegistries returns the parsers for every action and auth the vm accepts.
func NewRegistries() (*codec.TypeParser[chain.Action], *codec.TypeParser[chain.Auth], error) {
	actionParser := codec.NewTypeParser[chain.Action]()
	authParser := codec.NewTypeParser[chain.Auth]()

	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		actionParser.Register(&actions.Initialize{}, actions.UnmarshalInitialize),
		actionParser.Register(&actions.MintMusicNFT{}, actions.UnmarshalMintMusicNFT),
		actionParser.Register(&actions.TransferNFT{}, actions.UnmarshalTransferNFT),

		// When registering new auth, ALWAYS make sure to append at the end.
		authParser.Register(&auth.ED25519{}, auth.UnmarshalED25519),
	)
	return actionParser, authParser, errs.Err
}

func (vm *VM) Rules() chain.Rules {
	return vm.rules
}

func (vm *VM) ActionRegistry() *codec.TypeParser[chain.Action] {
	return vm.actionRegistry
}

func (vm *VM) AuthRegistry() *codec.TypeParser[chain.Auth] {
	return vm.authRegistry
}

// ParseTx decodes a signed transaction.
func ParseTx(parser chain.Parser, b []byte) (*chain.Transaction, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	tx, err := chain.UnmarshalTx(p, parser.ActionRegistry(), parser.AuthRegistry())
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrTrailingBytes
	}
	return tx, nil
}
