/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token_test

import (
	"encoding/json"
	"testing"

	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityText(t *testing.T) {
	raw := make([]byte, token.IdentitySize)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	id := token.MustIdentity(raw)
	assert.False(t, id.IsZero())
	assert.Equal(t, raw, id.Bytes())

	parsed, err := token.ParseIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	out, err := json.Marshal(map[string]token.Identity{"mint": id})
	require.NoError(t, err)
	var back map[string]token.Identity
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, id, back["mint"])
}

func TestIdentityInvalid(t *testing.T) {
	_, err := token.NewIdentity([]byte{1, 2, 3})
	assert.EqualError(t, err, "invalid identity length, expected 32, got 3")

	_, err = token.ParseIdentity("0OIl")
	assert.Error(t, err)

	assert.Panics(t, func() { token.MustIdentity(nil) })
	assert.True(t, token.Identity{}.IsZero())
}

func TestIdentityCompare(t *testing.T) {
	a := token.Identity{1}
	b := token.Identity{2}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(token.Identity{1}))
}
