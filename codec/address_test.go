// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressString(t *testing.T) {
	require := require.New(t)

	addr, err := ParseAddress("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkgmt5yqE6PqL")
	require.NoError(err)
	require.Equal("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkgmt5yqE6PqL", addr.String())
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)

	addr := Address{1, 2, 3, 4}
	b, err := json.Marshal(addr)
	require.NoError(err)

	var parsed Address
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(addr, parsed)
}

func TestParseAddressInvalid(t *testing.T) {
	tests := map[string]string{
		"bad alphabet": "0OIl",
		"too short":    "3mJr7AoUXx2Wqd",
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAddress(s)
			require.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestSystemProgramAddress(t *testing.T) {
	require.Equal(t, EmptyAddress, MustParseAddress("11111111111111111111111111111111"))
}
