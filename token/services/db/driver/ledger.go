/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package driver

import (
	"context"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
)

// BankRecord is the persisted whitelist registry
type BankRecord struct {
	Authority driver.Identity
	Tokens    []token.Identity
}

// BalanceRecord is the persisted entitlement of an owner for a token type
type BalanceRecord struct {
	Token  token.Identity
	Amount token.Quantity
}

// AccountRecord is the persisted ledger account of an owner
type AccountRecord struct {
	Owner    driver.Identity
	Balances []BalanceRecord
}

// BankStore persists the whitelist registry
type BankStore interface {
	// CreateBank stores a new registry administered by authority.
	// It fails with driver.ErrBankAlreadyInitialized if a registry exists already.
	CreateBank(ctx context.Context, authority driver.Identity) error
	// GetBank returns the registry, or driver.ErrBankNotInitialized
	GetBank(ctx context.Context) (*BankRecord, error)
	// AddToken appends a token type to the registry.
	// It fails with driver.ErrAlreadyWhitelisted if the token type is present.
	AddToken(ctx context.Context, tokenID token.Identity) error
}

// AccountStore persists ledger accounts, keyed by owner
type AccountStore interface {
	// CreateAccount stores an empty account. It fails with driver.ErrAccountExists if one exists already.
	CreateAccount(ctx context.Context, owner driver.Identity) error
	// GetAccount returns the account of owner, or driver.ErrAccountNotFound
	GetAccount(ctx context.Context, owner driver.Identity) (*AccountRecord, error)
	// Owners returns the owners of all the accounts
	Owners(ctx context.Context) ([]driver.Identity, error)
	// NewLedgerTransaction opens a transaction for balance updates
	NewLedgerTransaction(ctx context.Context) (LedgerTransaction, error)
}

// LedgerTransaction stages balance updates that become visible on Commit
type LedgerTransaction interface {
	// GetAccount reads the account of owner, locking it until the transaction ends where the backend supports it
	GetAccount(ctx context.Context, owner driver.Identity) (*AccountRecord, error)
	// SetBalance overwrites the balance of owner for tokenID
	SetBalance(ctx context.Context, owner driver.Identity, tokenID token.Identity, amount token.Quantity) error
	Commit() error
	Rollback() error
}

// Store gives access to the whole persisted state of the bank
type Store interface {
	BankStore
	AccountStore
	Close() error
}
