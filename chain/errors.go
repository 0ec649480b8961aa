// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"errors"
	"fmt"

	"github.com/ava-labs/musicvm/codec"
	"github.com/ava-labs/musicvm/custody"
	"github.com/ava-labs/musicvm/pda"
	"github.com/ava-labs/musicvm/storage"
	"github.com/ava-labs/musicvm/tstate"
)

var (
	// Program
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyExists       = storage.ErrAccountExists
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAddressMismatch     = pda.ErrAddressMismatch
	ErrInsufficientCustody = custody.ErrInsufficientCustody
	ErrNotInitialized      = errors.New("program not initialized")
	ErrInsufficientFunds   = storage.ErrInsufficientFunds
	ErrInvariantViolated   = errors.New("invariant violated")

	ErrInvalidRoyalty = fmt.Errorf("%w: royalty percentage must be between 0 and 100", ErrInvalidArgument)
	ErrInvalidAmount  = fmt.Errorf("%w: amount must be exactly 1", ErrInvalidArgument)
	ErrFieldTooLong   = fmt.Errorf("%w: field too long", ErrInvalidArgument)

	// Tx Correctness
	ErrMissingSignature    = fmt.Errorf("%w: account marked signer did not sign", ErrUnauthorized)
	ErrUnexpectedSignature = errors.New("signature from account not referenced as signer")
	ErrDuplicateSignature  = errors.New("duplicate signature")
	ErrNoSignatures        = errors.New("transaction has no signatures")
	ErrNoInstructions      = errors.New("transaction has no instructions")
	ErrTooManyInstructions = errors.New("too many instructions")
	ErrTooManyAccounts     = errors.New("too many accounts")
	ErrTooManySignatures   = errors.New("too many signatures")
	ErrMissingAccounts     = fmt.Errorf("%w: not enough accounts", ErrInvalidArgument)
	ErrInvalidChainID      = errors.New("invalid chain id")
	ErrDuplicateTx         = errors.New("duplicate transaction")
	ErrAuthFailed          = fmt.Errorf("%w: signature verification failed", ErrUnauthorized)
)

// ErrorKind classifies the reason a transaction failed.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindUnauthorized
	KindAlreadyExists
	KindInvalidArgument
	KindAddressMismatch
	KindInsufficientCustody
	KindNotInitialized
	KindInsufficientFunds
	KindInvariantViolated
	KindInvalidTransaction
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindUnauthorized:
		return "Unauthorized"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindAddressMismatch:
		return "AddressMismatch"
	case KindInsufficientCustody:
		return "InsufficientCustody"
	case KindNotInitialized:
		return "NotInitialized"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindInvariantViolated:
		return "InvariantViolated"
	case KindInvalidTransaction:
		return "InvalidTransaction"
	default:
		return "Internal"
	}
}

// KindOf maps [err] onto the error taxonomy. Errors raised by the ledger,
// the account store and the state view are folded into the kind a caller
// would act on.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvariantViolated):
		return KindInvariantViolated
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrMissingSignature),
		errors.Is(err, ErrAuthFailed),
		errors.Is(err, tstate.ErrInvalidKeyOrPermission),
		errors.Is(err, custody.ErrWrongAuthority),
		errors.Is(err, custody.ErrAuthorityRevoked),
		errors.Is(err, storage.ErrIllegalOwner):
		return KindUnauthorized
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrAddressMismatch),
		errors.Is(err, custody.ErrMintMismatch):
		return KindAddressMismatch
	case errors.Is(err, ErrInsufficientCustody),
		errors.Is(err, custody.ErrCustodyNotFound):
		return KindInsufficientCustody
	case errors.Is(err, ErrNotInitialized):
		return KindNotInitialized
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, custody.ErrInvalidAmount),
		errors.Is(err, custody.ErrMintNotFound),
		errors.Is(err, storage.ErrDataTooLarge),
		errors.Is(err, storage.ErrInvalidDiscriminator),
		errors.Is(err, codec.ErrFieldTooLarge):
		return KindInvalidArgument
	case errors.Is(err, ErrUnexpectedSignature),
		errors.Is(err, ErrDuplicateSignature),
		errors.Is(err, ErrNoSignatures),
		errors.Is(err, ErrNoInstructions),
		errors.Is(err, ErrTooManyInstructions),
		errors.Is(err, ErrTooManySignatures),
		errors.Is(err, ErrTooManyAccounts),
		errors.Is(err, ErrInvalidChainID),
		errors.Is(err, ErrDuplicateTx):
		return KindInvalidTransaction
	default:
		return KindInternal
	}
}
