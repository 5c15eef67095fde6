/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bank

import (
	"maps"
	"slices"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

// Balance is the entitlement of an owner for a single token type
type Balance struct {
	Token  token.Identity `json:"token"`
	Amount token.Quantity `json:"amount"`
}

// Account records, per token type, how much its owner is entitled to withdraw.
// A token type the owner never transacted in has no entry, which reads as zero.
// Account is not safe for concurrent use; callers serialize access per owner.
type Account struct {
	owner    driver.Identity
	balances map[token.Identity]token.Quantity
}

// NewAccount returns an account with no balances
func NewAccount(owner driver.Identity) *Account {
	return &Account{
		owner:    owner,
		balances: map[token.Identity]token.Quantity{},
	}
}

// RestoreAccount rebuilds an account from persisted balances.
// Zero balances are kept, since a zeroed entry is still a token the owner transacted in.
func RestoreAccount(owner driver.Identity, balances ...Balance) (*Account, error) {
	a := NewAccount(owner)
	for _, b := range balances {
		if _, ok := a.balances[b.Token]; ok {
			return nil, errors.Errorf("duplicate balance for token [%s] in account [%s]", b.Token, owner)
		}
		a.balances[b.Token] = b.Amount
	}
	return a, nil
}

func (a *Account) Owner() driver.Identity {
	return a.owner
}

// Credit adds amount to the balance of the passed token type.
// It fails with driver.ErrLedgerOverflow, leaving the balance untouched, if the sum does not fit.
func (a *Account) Credit(id token.Identity, amount token.Quantity) error {
	if amount.IsZero() {
		return nil
	}
	sum, err := a.balances[id].Add(amount)
	if err != nil {
		return errors.Wrapf(driver.ErrLedgerOverflow, "crediting [%d] of [%s] to [%s]: %s", amount, id, a.owner, err)
	}
	a.balances[id] = sum
	return nil
}

// Debit subtracts amount from the balance of the passed token type.
// It fails with driver.ErrInsufficientBalance if there is no entry or the balance is lower than amount.
func (a *Account) Debit(id token.Identity, amount token.Quantity) error {
	current, ok := a.balances[id]
	if !ok {
		return errors.Wrapf(driver.ErrInsufficientBalance, "no balance for [%s] in account [%s]", id, a.owner)
	}
	diff, err := current.Sub(amount)
	if err != nil {
		return errors.Wrapf(driver.ErrInsufficientBalance, "debiting [%d] of [%s] from [%s]: %s", amount, id, a.owner, err)
	}
	a.balances[id] = diff
	return nil
}

// BalanceOf returns the balance of the passed token type, zero if absent
func (a *Account) BalanceOf(id token.Identity) token.Quantity {
	return a.balances[id]
}

// HasAtLeast tells whether the balance of the passed token type covers amount
func (a *Account) HasAtLeast(id token.Identity, amount token.Quantity) bool {
	return a.balances[id] >= amount
}

// Balances returns the entries of this account sorted by token type
func (a *Account) Balances() []Balance {
	ids := slices.SortedFunc(maps.Keys(a.balances), token.Identity.Compare)
	res := make([]Balance, 0, len(ids))
	for _, id := range ids {
		res = append(res, Balance{Token: id, Amount: a.balances[id]})
	}
	return res
}

// Clone returns a deep copy of this account
func (a *Account) Clone() *Account {
	return &Account{
		owner:    a.owner,
		balances: maps.Clone(a.balances),
	}
}
