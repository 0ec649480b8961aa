// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
)

const maxResultMessage = 1024

var (
	failureByte = byte(0x0)
	successByte = byte(0x1)
)

// TransactionResult is the outcome recorded for every processed transaction.
type TransactionResult struct {
	Timestamp int64
	Success   bool
	Kind      uint8
	Message   string
}

// [txPrefix] + [txID]
func TxKey(id ids.ID) (k []byte) {
	k = make([]byte, 1+consts.IDLen)
	k[0] = txPrefix
	copy(k[1:], id[:])
	return
}

func StoreTransaction(
	_ context.Context,
	db database.KeyValueWriter,
	id ids.ID,
	t int64,
	success bool,
	kind uint8,
	message string,
) error {
	if len(message) > maxResultMessage {
		message = message[:maxResultMessage]
	}
	size := consts.Int64Len + consts.ByteLen + consts.ByteLen + codec.StringLen(message)
	p := codec.NewWriter(size, size)
	p.PackInt64(t)
	if success {
		p.PackByte(successByte)
	} else {
		p.PackByte(failureByte)
	}
	p.PackByte(kind)
	p.PackString(message)
	if err := p.Err(); err != nil {
		return err
	}
	return db.Put(TxKey(id), p.Bytes())
}

// HasTransaction returns whether a result was already recorded for [id].
func HasTransaction(_ context.Context, db database.KeyValueReader, id ids.ID) (bool, error) {
	return db.Has(TxKey(id))
}

func GetTransaction(
	_ context.Context,
	db database.KeyValueReader,
	id ids.ID,
) (bool, *TransactionResult, error) {
	v, err := db.Get(TxKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	p := codec.NewReader(v, len(v))
	r := &TransactionResult{}
	r.Timestamp = p.UnpackInt64()
	r.Success = p.UnpackByte() == successByte
	r.Kind = p.UnpackByte()
	r.Message = p.UnpackString(maxResultMessage, false)
	if err := p.Err(); err != nil {
		return false, nil, err
	}
	return true, r, nil
}
