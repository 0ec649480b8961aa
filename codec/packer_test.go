// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/musicvm/consts"
)

func TestPackerRoundTrip(t *testing.T) {
	require := require.New(t)

	id := ids.GenerateTestID()
	addr := Address{7}
	wp := NewWriter(128, consts.NetworkSizeLimit)
	wp.PackID(id)
	wp.PackAddress(addr)
	wp.PackByte(42)
	wp.PackBool(true)
	wp.PackUint64(10)
	wp.PackInt64(-5)
	wp.PackString("music")
	wp.PackBytes([]byte{1, 2})
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), consts.NetworkSizeLimit)
	var (
		unpackedID   ids.ID
		unpackedAddr Address
		unpackedB    []byte
	)
	rp.UnpackID(true, &unpackedID)
	rp.UnpackAddress(true, &unpackedAddr)
	require.Equal(byte(42), rp.UnpackByte())
	require.True(rp.UnpackBool())
	require.Equal(uint64(10), rp.UnpackUint64(true))
	require.Equal(int64(-5), rp.UnpackInt64())
	require.Equal("music", rp.UnpackString(8, true))
	rp.UnpackBytes(2, true, &unpackedB)
	require.NoError(rp.Err())
	require.True(rp.Empty())

	require.Equal(id, unpackedID)
	require.Equal(addr, unpackedAddr)
	require.Equal([]byte{1, 2}, unpackedB)
}

func TestPackerRequired(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(64, consts.NetworkSizeLimit)
	wp.PackAddress(EmptyAddress)
	rp := NewReader(wp.Bytes(), consts.NetworkSizeLimit)
	var addr Address
	rp.UnpackAddress(true, &addr)
	require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
}

func TestPackerStringLimit(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(64, consts.NetworkSizeLimit)
	wp.PackString("too long")
	rp := NewReader(wp.Bytes(), consts.NetworkSizeLimit)
	rp.UnpackString(3, false)
	require.ErrorIs(rp.Err(), ErrFieldTooLarge)
}
