// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/state"
	"github.com/ava-labs/musicvm/utils"
)

const BaseSize = consts.Int64Len + consts.IDLen

// Base holds the fields every transaction carries regardless of its
// instructions.
type Base struct {
	// Timestamp is the Unix time (in milliseconds) the transaction was
	// created at. Two otherwise identical transactions must differ here.
	Timestamp int64 `json:"timestamp"`

	// ChainID protects against replay on another chain.
	ChainID ids.ID `json:"chainId"`
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	var base Base
	base.Timestamp = p.UnpackInt64()
	p.UnpackID(true, &base.ChainID)
	return &base, p.Err()
}

// Instruction pairs an [Action] with the ordered accounts it operates on.
type Instruction struct {
	Accounts Accounts `json:"accounts"`
	Action   Action   `json:"action"`
}

func (i *Instruction) Size() int {
	return consts.ByteLen + consts.ByteLen + len(i.Accounts)*AccountMetaLen + i.Action.Size()
}

func (i *Instruction) Marshal(p *codec.Packer) {
	p.PackByte(i.Action.GetTypeID())
	p.PackByte(uint8(len(i.Accounts)))
	for _, m := range i.Accounts {
		m.Marshal(p)
	}
	i.Action.Marshal(p)
}

type Transaction struct {
	Base         *Base          `json:"base"`
	Instructions []*Instruction `json:"instructions"`
	Auths        []Auth         `json:"auths"`

	digest []byte
	bytes  []byte
	size   int
	id     ids.ID
}

func NewTx(base *Base, instructions []*Instruction) *Transaction {
	return &Transaction{
		Base:         base,
		Instructions: instructions,
	}
}

// Digest is the message every signer signs.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	// Counts are encoded as a single byte.
	if len(t.Instructions) > int(consts.MaxUint8) {
		return nil, ErrTooManyInstructions
	}
	size := BaseSize + consts.ByteLen
	for _, ins := range t.Instructions {
		if len(ins.Accounts) > int(consts.MaxUint8) {
			return nil, ErrTooManyAccounts
		}
		size += ins.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	t.Base.Marshal(p)
	p.PackByte(uint8(len(t.Instructions)))
	for _, ins := range t.Instructions {
		ins.Marshal(p)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	t.digest = p.Bytes()
	return t.digest, nil
}

// Sign signs the digest with every factory (the first becomes the payer) and
// returns a fully initialized copy of the transaction.
func (t *Transaction) Sign(
	factories []AuthFactory,
	actionRegistry *codec.TypeParser[Action],
	authRegistry *codec.TypeParser[Auth],
) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auths := make([]Auth, 0, len(factories))
	for _, f := range factories {
		auth, err := f.Sign(msg)
		if err != nil {
			return nil, err
		}
		auths = append(auths, auth)
	}
	t.Auths = auths

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	size := len(msg) + consts.ByteLen
	for _, auth := range auths {
		size += consts.ByteLen + auth.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p, actionRegistry, authRegistry)
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	if len(t.Auths) > int(consts.MaxUint8) {
		return ErrTooManySignatures
	}
	p.PackFixedBytes(msg)
	p.PackByte(uint8(len(t.Auths)))
	for _, auth := range t.Auths {
		p.PackByte(auth.GetTypeID())
		auth.Marshal(p)
	}
	return p.Err()
}

func UnmarshalTx(
	p *codec.Packer,
	actionRegistry *codec.TypeParser[Action],
	authRegistry *codec.TypeParser[Auth],
) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	numInstructions := p.UnpackByte()
	instructions := make([]*Instruction, 0, numInstructions)
	for i := uint8(0); i < numInstructions; i++ {
		typeID := p.UnpackByte()
		numAccounts := p.UnpackByte()
		accounts := make(Accounts, 0, numAccounts)
		for j := uint8(0); j < numAccounts; j++ {
			accounts = append(accounts, UnmarshalAccountMeta(p))
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		unmarshal, ok := actionRegistry.LookupIndex(typeID)
		if !ok {
			return nil, fmt.Errorf("%w: action %d", codec.ErrUnknownType, typeID)
		}
		action, err := unmarshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal action", err)
		}
		instructions = append(instructions, &Instruction{Accounts: accounts, Action: action})
	}
	digest := p.Offset()
	numAuths := p.UnpackByte()
	auths := make([]Auth, 0, numAuths)
	for i := uint8(0); i < numAuths; i++ {
		auth, err := authRegistry.Unmarshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal auth", err)
		}
		auths = append(auths, auth)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	tx := NewTx(base, instructions)
	tx.Auths = auths
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = utils.ToID(tx.bytes)
	return tx, nil
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

// Payer is the signer of the first signature.
func (t *Transaction) Payer() codec.Address {
	if len(t.Auths) == 0 {
		return codec.EmptyAddress
	}
	return t.Auths[0].Signer()
}

// Signers returns the set of addresses that produced a signature.
func (t *Transaction) Signers() set.Set[codec.Address] {
	s := set.NewSet[codec.Address](len(t.Auths))
	for _, auth := range t.Auths {
		s.Add(auth.Signer())
	}
	return s
}

// StateKeys is the union of every instruction's account keys.
func (t *Transaction) StateKeys() state.Keys {
	keys := make(state.Keys)
	for _, ins := range t.Instructions {
		keys.Merge(ins.Accounts.StateKeys())
	}
	return keys
}

// Addresses is every account named by the transaction.
func (t *Transaction) Addresses() set.Set[codec.Address] {
	s := set.NewSet[codec.Address](len(t.Instructions) * 4)
	for _, ins := range t.Instructions {
		s.Union(ins.Accounts.Addresses())
	}
	return s
}

// SyntacticVerify checks everything that can be checked without state or
// signature verification.
func (t *Transaction) SyntacticVerify(r Rules) error {
	if t.Base.ChainID != r.GetChainID() {
		return ErrInvalidChainID
	}
	if len(t.Instructions) == 0 {
		return ErrNoInstructions
	}
	if len(t.Instructions) > int(r.GetMaxActionsPerTx()) {
		return ErrTooManyInstructions
	}
	if len(t.Auths) == 0 {
		return ErrNoSignatures
	}
	if len(t.Auths) > int(r.GetMaxSignatures()) {
		return fmt.Errorf("%w: %d signatures", ErrTooManySignatures, len(t.Auths))
	}
	signers := t.Signers()
	if signers.Len() != len(t.Auths) {
		return ErrDuplicateSignature
	}
	referenced := set.NewSet[codec.Address](len(t.Auths))
	for i, ins := range t.Instructions {
		if len(ins.Accounts) > int(r.GetMaxAccountsPerAction()) {
			return fmt.Errorf("%w: instruction %d", ErrTooManyAccounts, i)
		}
		if err := ins.Accounts.Expect(ins.Action.NumAccounts()); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		for _, m := range ins.Accounts {
			if !m.IsSigner {
				continue
			}
			if !signers.Contains(m.Address) {
				return fmt.Errorf("%w: %s", ErrMissingSignature, m.Address)
			}
			referenced.Add(m.Address)
		}
	}
	if referenced.Len() != signers.Len() {
		return ErrUnexpectedSignature
	}
	return nil
}

// VerifyAuth checks every signature sequentially.
func (t *Transaction) VerifyAuth(ctx context.Context) error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	for _, auth := range t.Auths {
		if err := auth.Verify(ctx, msg); err != nil {
			return fmt.Errorf("%w: %w", ErrAuthFailed, err)
		}
	}
	return nil
}
