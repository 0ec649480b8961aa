// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/consts"
)

// Well-known accounts every instruction may reference.
var (
	SystemProgramID          = codec.MustParseAddress(consts.SystemProgramID)
	TokenProgramID           = codec.MustParseAddress(consts.TokenProgramID)
	AssociatedTokenProgramID = codec.MustParseAddress(consts.AssociatedTokenProgramID)
	RentSysvarID             = codec.MustParseAddress(consts.RentSysvarID)
)
