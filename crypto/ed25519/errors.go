// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import "errors"

var ErrInvalidHexKey = errors.New("invalid hex-encoded key")
