// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/ava-labs/musicvm/consts"

// StringLen is the packed size of [msg] (uint16 length prefix).
func StringLen(msg string) int {
	return consts.Uint16Len + len(msg)
}
