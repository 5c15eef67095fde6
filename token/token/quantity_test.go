/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQuantity(t *testing.T) {
	_, err := token.ToQuantity("0x-64")
	assert.Equal(t, "invalid input [0x-64,64]", err.Error())

	_, err = token.ToQuantity("-100")
	assert.Equal(t, "quantity must be larger than 0", err.Error())

	_, err = token.ToQuantity("abc")
	assert.Equal(t, "invalid input [abc,64]", err.Error())

	_, err = token.ToQuantity("0babc")
	assert.Equal(t, "invalid input [0babc,64]", err.Error())

	_, err = token.ToQuantity("0x10000000000000000")
	assert.Equal(t, "0x10000000000000000 has precision 65 > 64", err.Error())

	q, err := token.ToQuantity("10231")
	require.NoError(t, err)
	assert.Equal(t, token.Quantity(10231), q)

	q, err = token.ToQuantity("0XAbC")
	require.NoError(t, err)
	assert.Equal(t, token.Quantity(0xabc), q)
}

func TestDecimalAndHex(t *testing.T) {
	q, err := token.ToQuantity("10231")
	require.NoError(t, err)
	assert.Equal(t, "10231", q.Decimal())

	q, err = token.ToQuantity("0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", q.Hex())
	assert.Equal(t, "2748", q.ToBigInt().String())
}

func TestOverflow(t *testing.T) {
	half := uint64(math.MaxUint64 / 2)
	assert.Equal(t, uint64(math.MaxUint64), half+half+1)

	a := token.Quantity(1)
	b := token.Quantity(math.MaxUint64)

	sum, err := a.Add(b)
	require.ErrorIs(t, err, token.ErrOverflow)
	assert.Equal(t, a, sum)

	_, err = b.Add(b)
	require.ErrorIs(t, err, token.ErrOverflow)

	sum, err = token.Quantity(half).Add(token.Quantity(half + 1))
	require.NoError(t, err)
	assert.Equal(t, "0x"+strconv.FormatUint(math.MaxUint64, 16), sum.Hex())
}

func TestUnderflow(t *testing.T) {
	a := token.Quantity(10)

	diff, err := a.Sub(11)
	require.ErrorIs(t, err, token.ErrUnderflow)
	assert.Equal(t, a, diff)

	diff, err = a.Sub(10)
	require.NoError(t, err)
	assert.True(t, diff.IsZero())
}

func TestCmp(t *testing.T) {
	assert.Equal(t, -1, token.Quantity(1).Cmp(2))
	assert.Equal(t, 0, token.Quantity(2).Cmp(2))
	assert.Equal(t, 1, token.Quantity(3).Cmp(2))
}
