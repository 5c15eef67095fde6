/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dbtest

import (
	"context"
	"math"
	"testing"

	tdriver "github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/services/db/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T1 = token.Identity{1}
	T2 = token.Identity{2}
	T3 = token.Identity{3}
)

var LedgerCases = []struct {
	Name string
	Fn   func(*testing.T, driver.Store)
}{
	{"Bank", TBank},
	{"Accounts", TAccounts},
	{"Commit", TCommit},
	{"Rollback", TRollback},
	{"UnknownToken", TUnknownToken},
	{"ConcurrentUpdates", TConcurrentUpdates},
}

// LedgerTest runs every ledger case on a fresh store returned by open
func LedgerTest(t *testing.T, open func(name string) driver.Store) {
	for _, c := range LedgerCases {
		t.Run(c.Name, func(xt *testing.T) {
			store := open(c.Name)
			defer func() { assert.NoError(xt, store.Close()) }()
			c.Fn(xt, store)
		})
	}
}

func TBank(t *testing.T, store driver.Store) {
	ctx := context.Background()

	_, err := store.GetBank(ctx)
	require.ErrorIs(t, err, tdriver.ErrBankNotInitialized)

	require.NoError(t, store.CreateBank(ctx, "authority"))
	require.ErrorIs(t, store.CreateBank(ctx, "someone else"), tdriver.ErrBankAlreadyInitialized)

	record, err := store.GetBank(ctx)
	require.NoError(t, err)
	assert.Equal(t, tdriver.Identity("authority"), record.Authority)
	assert.Empty(t, record.Tokens)

	require.NoError(t, store.AddToken(ctx, T2))
	require.NoError(t, store.AddToken(ctx, T1))
	require.ErrorIs(t, store.AddToken(ctx, T1), tdriver.ErrAlreadyWhitelisted)

	record, err = store.GetBank(ctx)
	require.NoError(t, err)
	assert.Equal(t, []token.Identity{T1, T2}, record.Tokens)
}

func TAccounts(t *testing.T, store driver.Store) {
	ctx := context.Background()

	_, err := store.GetAccount(ctx, "alice")
	require.ErrorIs(t, err, tdriver.ErrAccountNotFound)

	require.NoError(t, store.CreateAccount(ctx, "bob"))
	require.NoError(t, store.CreateAccount(ctx, "alice"))
	require.ErrorIs(t, store.CreateAccount(ctx, "alice"), tdriver.ErrAccountExists)

	record, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, tdriver.Identity("alice"), record.Owner)
	assert.Empty(t, record.Balances)

	owners, err := store.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tdriver.Identity{"alice", "bob"}, owners)
}

func TCommit(t *testing.T, store driver.Store) {
	ctx := context.Background()
	setup(t, store, "alice")

	tx, err := store.NewLedgerTransaction(ctx)
	require.NoError(t, err)
	record, err := tx.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, record.Balances)
	require.NoError(t, tx.SetBalance(ctx, "alice", T2, 100))
	require.NoError(t, tx.SetBalance(ctx, "alice", T1, math.MaxUint64))
	require.NoError(t, tx.Commit())

	record, err = store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []driver.BalanceRecord{
		{Token: T1, Amount: math.MaxUint64},
		{Token: T2, Amount: 100},
	}, record.Balances)

	// overwrite
	tx, err = store.NewLedgerTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetBalance(ctx, "alice", T2, 0))
	require.NoError(t, tx.Commit())

	record, err = store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []driver.BalanceRecord{
		{Token: T1, Amount: math.MaxUint64},
		{Token: T2, Amount: 0},
	}, record.Balances)

	tx, err = store.NewLedgerTransaction(ctx)
	require.NoError(t, err)
	_, err = tx.GetAccount(ctx, "nobody")
	require.ErrorIs(t, err, tdriver.ErrAccountNotFound)
	require.NoError(t, tx.Rollback())
}

func TRollback(t *testing.T, store driver.Store) {
	ctx := context.Background()
	setup(t, store, "alice")

	tx, err := store.NewLedgerTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetBalance(ctx, "alice", T1, 100))
	require.NoError(t, tx.Rollback())

	record, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, record.Balances)
}

func TUnknownToken(t *testing.T, store driver.Store) {
	ctx := context.Background()
	setup(t, store, "alice")

	tx, err := store.NewLedgerTransaction(ctx)
	require.NoError(t, err)
	assert.Error(t, tx.SetBalance(ctx, "alice", T3, 100))
	require.NoError(t, tx.Rollback())
}

func TConcurrentUpdates(t *testing.T, store driver.Store) {
	ctx := context.Background()
	setup(t, store, "alice")

	const updates = 20
	var wg conc.WaitGroup
	for range updates {
		wg.Go(func() {
			tx, err := store.NewLedgerTransaction(ctx)
			if !assert.NoError(t, err) {
				return
			}
			record, err := tx.GetAccount(ctx, "alice")
			if !assert.NoError(t, err) {
				assert.NoError(t, tx.Rollback())
				return
			}
			var current token.Quantity
			for _, b := range record.Balances {
				if b.Token == T1 {
					current = b.Amount
				}
			}
			assert.NoError(t, tx.SetBalance(ctx, "alice", T1, current+1))
			assert.NoError(t, tx.Commit())
		})
	}
	wg.Wait()

	record, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []driver.BalanceRecord{{Token: T1, Amount: updates}}, record.Balances)
}

func setup(t *testing.T, store driver.Store, owners ...tdriver.Identity) {
	ctx := context.Background()
	require.NoError(t, store.CreateBank(ctx, "authority"))
	require.NoError(t, store.AddToken(ctx, T1))
	require.NoError(t, store.AddToken(ctx, T2))
	for _, owner := range owners {
		require.NoError(t, store.CreateAccount(ctx, owner))
	}
}
