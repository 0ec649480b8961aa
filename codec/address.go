// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const AddressLen = 32

// Address is the 32 byte identifier of an account. Wallet addresses are
// ed25519 public keys, program-derived addresses are guaranteed to lie off
// the curve.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(b) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	return Address(b), nil
}

// MustParseAddress is ParseAddress for compile-time constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

// MarshalText returns the base58 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a base58-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
