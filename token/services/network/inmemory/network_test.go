/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package inmemory

import (
	"context"
	"testing"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T1 = token.Identity{1}
	T2 = token.Identity{2}
)

func newNetwork(t *testing.T) *Network {
	n := NewNetwork()
	require.NoError(t, n.CreateAccount(driver.TokenAccount{Address: "alice-t1", Token: T1, Owner: "alice", Amount: 100}))
	require.NoError(t, n.CreateAccount(driver.TokenAccount{Address: "bank-t1", Token: T1, Owner: "bank"}))
	require.NoError(t, n.CreateAccount(driver.TokenAccount{Address: "bank-t2", Token: T2, Owner: "bank"}))
	return n
}

func amountOf(t *testing.T, n *Network, address string) token.Quantity {
	account, err := n.TokenAccount(context.Background(), address)
	require.NoError(t, err)
	return account.Amount
}

func TestTransfer(t *testing.T) {
	n := newNetwork(t)
	ctx := context.Background()

	require.NoError(t, n.Transfer(ctx, &driver.TransferRequest{ID: "1", From: "alice-t1", To: "bank-t1", Token: T1, Amount: 40, Authority: "alice"}))
	assert.Equal(t, token.Quantity(60), amountOf(t, n, "alice-t1"))
	assert.Equal(t, token.Quantity(40), amountOf(t, n, "bank-t1"))

	// replay
	require.NoError(t, n.Transfer(ctx, &driver.TransferRequest{ID: "1", From: "alice-t1", To: "bank-t1", Token: T1, Amount: 40, Authority: "alice"}))
	assert.Equal(t, token.Quantity(60), amountOf(t, n, "alice-t1"))
	assert.Equal(t, token.Quantity(100), n.Supply(T1))
}

func TestTransferRejections(t *testing.T) {
	n := newNetwork(t)
	ctx := context.Background()
	require.NoError(t, n.CreateAccount(driver.TokenAccount{Address: "frozen-t1", Token: T1, Owner: "carl", Amount: 10, Frozen: true}))

	tests := []struct {
		name    string
		request driver.TransferRequest
		wantErr error
	}{
		{"unknown source", driver.TransferRequest{From: "nobody", To: "bank-t1", Token: T1, Amount: 1, Authority: "alice"}, ErrUnknownAccount},
		{"unknown destination", driver.TransferRequest{From: "alice-t1", To: "nobody", Token: T1, Amount: 1, Authority: "alice"}, ErrUnknownAccount},
		{"token mismatch", driver.TransferRequest{From: "alice-t1", To: "bank-t2", Token: T1, Amount: 1, Authority: "alice"}, driver.ErrTokenMismatch},
		{"wrong token", driver.TransferRequest{From: "alice-t1", To: "bank-t1", Token: T2, Amount: 1, Authority: "alice"}, driver.ErrTokenMismatch},
		{"not the owner", driver.TransferRequest{From: "alice-t1", To: "bank-t1", Token: T1, Amount: 1, Authority: "bank"}, driver.ErrUnauthorized},
		{"frozen source", driver.TransferRequest{From: "frozen-t1", To: "bank-t1", Token: T1, Amount: 1, Authority: "carl"}, ErrAccountFrozen},
		{"insufficient funds", driver.TransferRequest{From: "alice-t1", To: "bank-t1", Token: T1, Amount: 101, Authority: "alice"}, driver.ErrInsufficientWalletBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.Transfer(ctx, &tt.request)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "unexpected error: %v", err)
			assert.Equal(t, token.Quantity(100), amountOf(t, n, "alice-t1"))
			assert.Equal(t, token.Quantity(0), amountOf(t, n, "bank-t1"))
		})
	}
}

func TestTransferHook(t *testing.T) {
	n := newNetwork(t)
	boom := errors.New("boom")
	n.SetTransferHook(func(context.Context, *driver.TransferRequest) error { return boom })

	err := n.Transfer(context.Background(), &driver.TransferRequest{ID: "1", From: "alice-t1", To: "bank-t1", Token: T1, Amount: 1, Authority: "alice"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, token.Quantity(100), amountOf(t, n, "alice-t1"))

	// a rejected request can be submitted again
	n.SetTransferHook(nil)
	require.NoError(t, n.Transfer(context.Background(), &driver.TransferRequest{ID: "1", From: "alice-t1", To: "bank-t1", Token: T1, Amount: 1, Authority: "alice"}))
	assert.Equal(t, token.Quantity(99), amountOf(t, n, "alice-t1"))
}

func TestMintAndFreeze(t *testing.T) {
	n := newNetwork(t)
	require.NoError(t, n.Mint("alice-t1", 5))
	assert.Equal(t, token.Quantity(105), amountOf(t, n, "alice-t1"))
	assert.ErrorIs(t, n.Mint("nobody", 5), ErrUnknownAccount)
	assert.ErrorIs(t, n.Mint("alice-t1", ^token.Quantity(0)), token.ErrOverflow)

	require.NoError(t, n.SetFrozen("bank-t1", true))
	err := n.Transfer(context.Background(), &driver.TransferRequest{From: "alice-t1", To: "bank-t1", Token: T1, Amount: 1, Authority: "alice"})
	assert.ErrorIs(t, err, ErrAccountFrozen)

	assert.Error(t, n.CreateAccount(driver.TokenAccount{Address: "alice-t1", Token: T1}))
	assert.Len(t, n.TokenAccounts(), 3)
}

func TestConcurrentTransfers(t *testing.T) {
	n := newNetwork(t)
	ctx := context.Background()

	var wg conc.WaitGroup
	for range 100 {
		wg.Go(func() {
			_ = n.Transfer(ctx, &driver.TransferRequest{From: "alice-t1", To: "bank-t1", Token: T1, Amount: 3, Authority: "alice"})
		})
	}
	wg.Wait()

	assert.Equal(t, token.Quantity(1), amountOf(t, n, "alice-t1"))
	assert.Equal(t, token.Quantity(99), amountOf(t, n, "bank-t1"))
}

func TestDirectory(t *testing.T) {
	d := Directory{T1: "bank-t1", T2: "bank-t2"}
	address, err := d.CustodyAccount(context.Background(), T1)
	require.NoError(t, err)
	assert.Equal(t, "bank-t1", address)

	_, err = d.CustodyAccount(context.Background(), token.Identity{9})
	assert.ErrorIs(t, err, driver.ErrTokenMismatch)
	assert.Equal(t, []string{"bank-t1", "bank-t2"}, d.Addresses())
}
