// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"encoding/binary"

	"github.com/ava-labs/musicvm/consts"
)

const chunkSize = 64 // bytes

// Valid returns whether [key] carries a chunk suffix.
func Valid(key string) bool {
	return len(key) >= consts.Uint16Len
}

// MaxChunks returns the number of chunks encoded in the suffix of [key].
func MaxChunks(key []byte) (uint16, bool) {
	l := len(key)
	if l < consts.Uint16Len {
		return 0, false
	}
	return binary.BigEndian.Uint16(key[l-consts.Uint16Len:]), true
}

func NumChunks(value []byte) (uint16, bool) {
	return numChunks(len(value))
}

func numChunks(valueLen int) (uint16, bool) {
	if valueLen == 0 {
		return 0, true
	}
	raw := valueLen/chunkSize + 1
	if raw > int(consts.MaxUint16) {
		return 0, false
	}
	return uint16(raw), true
}

// VerifyValue returns whether [value] fits in the number of chunks
// reserved by [key].
func VerifyValue(key []byte, value []byte) bool {
	valueChunks, ok := NumChunks(value)
	if !ok {
		return false
	}
	keyChunks, ok := MaxChunks(key)
	if !ok {
		return false
	}
	return valueChunks <= keyChunks
}

// ChunksFor returns the number of chunks required to hold [size] bytes.
func ChunksFor(size int) (uint16, bool) {
	return numChunks(size)
}

// EncodeChunks appends [maxChunks] to [key].
func EncodeChunks(key []byte, maxChunks uint16) []byte {
	return binary.BigEndian.AppendUint16(key, maxChunks)
}
