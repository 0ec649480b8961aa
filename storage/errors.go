// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrAccountExists        = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrIllegalOwner         = errors.New("account not owned by program")
	ErrDataTooLarge         = errors.New("data exceeds allocated space")
	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
	ErrCorruptAccount       = errors.New("corrupt account")
)
