// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import "errors"

var (
	ErrInsufficientCustody = errors.New("insufficient custody balance")
	ErrMintNotFound        = errors.New("mint not found")
	ErrCustodyNotFound     = errors.New("custody account not found")
	ErrMintMismatch        = errors.New("custody account holds a different mint")
	ErrWrongAuthority      = errors.New("wrong authority")
	ErrAuthorityRevoked    = errors.New("mint authority revoked")
	ErrInvalidAmount       = errors.New("invalid amount")
)
