// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"errors"

	"github.com/ava-labs/musicvm/chain"
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
	"github.com/ava-labs/musicvm/crypto"
	"github.com/ava-labs/musicvm/crypto/ed25519"
)

var (
	ErrInvalidAuthType = errors.New("unexpected auth type")

	_ chain.Auth        = (*ED25519)(nil)
	_ chain.AuthFactory = (*ED25519Factory)(nil)
)

const ED25519Size = ed25519.PublicKeyLen + ed25519.SignatureLen

type ED25519 struct {
	PublicKey ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`
}

func (*ED25519) GetTypeID() uint8 {
	return consts.ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.PublicKey, d.Signature) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

func (d *ED25519) Signer() codec.Address {
	return d.PublicKey.Address()
}

func (*ED25519) Size() int {
	return ED25519Size
}

func (d *ED25519) Marshal(p *codec.Packer) {
	p.PackFixedBytes(d.PublicKey[:])
	p.PackFixedBytes(d.Signature[:])
}

func UnmarshalED25519(p *codec.Packer) (chain.Auth, error) {
	var (
		d      ED25519
		pk, sg []byte
	)
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &pk)
	p.UnpackFixedBytes(ed25519.SignatureLen, &sg)
	if err := p.Err(); err != nil {
		return nil, err
	}
	copy(d.PublicKey[:], pk)
	copy(d.Signature[:], sg)
	if d.PublicKey == ed25519.EmptyPublicKey {
		return nil, crypto.ErrInvalidPublicKey
	}
	return &d, nil
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func (d *ED25519Factory) Sign(msg []byte) (chain.Auth, error) {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{d.priv.PublicKey(), sig}, nil
}

func (d *ED25519Factory) Address() codec.Address {
	return d.priv.PublicKey().Address()
}

type ED25519AuthEngine struct{}

func (*ED25519AuthEngine) GetBatchVerifier(cores int, count int) chain.AuthBatchVerifier {
	batchSize := max(count/cores, ed25519.MinBatchSize)
	return &ED25519Batch{batchSize: batchSize, total: count}
}

type ED25519Batch struct {
	batchSize int
	total     int

	counter      int
	totalCounter int
	batch        *ed25519.Batch
}

func (b *ED25519Batch) Add(msg []byte, rauth chain.Auth) func() error {
	auth, ok := rauth.(*ED25519)
	if !ok {
		return func() error { return ErrInvalidAuthType }
	}
	if b.batch == nil {
		b.batch = ed25519.NewBatch(max(min(b.batchSize, b.total-b.totalCounter), 1))
	}
	b.batch.Add(msg, auth.PublicKey, auth.Signature)
	b.counter++
	b.totalCounter++
	if b.counter == b.batchSize {
		last := b.batch
		b.counter = 0
		b.batch = nil
		return last.VerifyAsync()
	}
	return nil
}

func (b *ED25519Batch) Done() []func() error {
	if b.batch == nil {
		return nil
	}
	return []func() error{b.batch.VerifyAsync()}
}
