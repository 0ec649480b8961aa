// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "errors"

var (
	ErrClosed         = errors.New("vm closed")
	ErrNotInitialized = errors.New("program not initialized")
	ErrTrailingBytes  = errors.New("trailing bytes after transaction")
)
