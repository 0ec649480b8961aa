// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	// These `codec` consts are defined here to avoid a circular dependency
	BoolLen   = 1
	ByteLen   = 1
	IDLen     = 32
	IntLen    = 4
	Uint8Len  = 1
	Uint16Len = 2
	Uint32Len = 4
	Uint64Len = 8
	Int64Len  = 8

	MaxUint8  = ^uint8(0)
	MaxUint16 = ^uint16(0)
	MaxUint   = ^uint(0)
	MaxInt    = int(MaxUint >> 1)
	MaxUint64 = ^uint64(0)

	// NetworkSizeLimit bounds any single encoded transaction.
	NetworkSizeLimit = 2_044_723 // 1.95 MiB

	MillisecondsPerSecond = 1000
)
