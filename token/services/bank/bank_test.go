/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bank_test

import (
	"testing"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/bank"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T1 = token.Identity{1}
	T2 = token.Identity{2}
	T3 = token.Identity{3}
)

func TestAddToken(t *testing.T) {
	b := bank.NewBank("authority")
	assert.Equal(t, driver.Identity("authority"), b.Authority())
	assert.Equal(t, 0, b.Size())

	require.NoError(t, b.AddToken(T1))
	assert.True(t, b.IsWhitelisted(T1))
	assert.False(t, b.IsWhitelisted(T2))

	err := b.AddToken(T1)
	require.ErrorIs(t, err, driver.ErrAlreadyWhitelisted)
	assert.Equal(t, 1, b.Size())
}

func TestAddTokenWithPersistFailure(t *testing.T) {
	b := bank.NewBank("authority")
	boom := errors.New("boom")

	err := b.AddTokenWith(T1, func(token.Identity) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, b.IsWhitelisted(T1))

	var persisted []token.Identity
	require.NoError(t, b.AddTokenWith(T1, func(id token.Identity) error {
		persisted = append(persisted, id)
		return nil
	}))
	assert.Equal(t, []token.Identity{T1}, persisted)

	// duplicates are rejected before persisting
	err = b.AddTokenWith(T1, func(token.Identity) error {
		t.Fatal("persist must not be called")
		return nil
	})
	require.ErrorIs(t, err, driver.ErrAlreadyWhitelisted)
}

func TestWhitelistQueryIsStable(t *testing.T) {
	b := bank.Restore("authority", T1, T1, T3)
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, []token.Identity{T1, T3}, b.Tokens())

	before := b.IsWhitelisted(T3)
	require.NoError(t, b.AddToken(T2))
	assert.Equal(t, before, b.IsWhitelisted(T3))
	assert.Equal(t, []token.Identity{T1, T2, T3}, b.Tokens())
}

func TestConcurrentAddToken(t *testing.T) {
	b := bank.NewBank("authority")

	var wg conc.WaitGroup
	results := make([]error, 64)
	for i := range results {
		wg.Go(func() {
			// every goroutine races on one of 8 token types
			results[i] = b.AddToken(token.Identity{byte(i % 8)})
		})
		wg.Go(func() {
			b.IsWhitelisted(token.Identity{byte(i % 8)})
		})
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, driver.ErrAlreadyWhitelisted)
	}
	assert.Equal(t, 8, succeeded)
	assert.Equal(t, 8, b.Size())
}
