/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/
package driver

import (
	"context"

	"github.com/hyperledger-labs/token-custody/token/token"
)

// TokenAccount is an account of the external ledger holding units of a single token type
type TokenAccount struct {
	// Address identifies the account on the external ledger
	Address string `json:"address"`
	// Token is the token type the account holds
	Token token.Identity `json:"token"`
	// Owner is the identity allowed to move funds out of the account
	Owner Identity `json:"owner"`
	// Amount is the current balance of the account
	Amount token.Quantity `json:"amount"`
	// Frozen accounts reject any transfer
	Frozen bool `json:"frozen"`
}

// TransferRequest asks the network to move Amount units of Token from one account to another
type TransferRequest struct {
	// ID is unique per request and lets the network detect replays
	ID        string
	From      string
	To        string
	Token     token.Identity
	Amount    token.Quantity
	Authority Identity
}

// Network is the external ledger that physically holds the tokens.
type Network interface {
	// Transfer moves the requested amount atomically. Either the whole transfer is applied or nothing is.
	Transfer(ctx context.Context, request *TransferRequest) error
	// TokenAccount returns the current state of the account at the passed address
	TokenAccount(ctx context.Context, address string) (*TokenAccount, error)
}

// CustodyDirectory resolves the bank's pooled custody account for a given token type
type CustodyDirectory interface {
	CustodyAccount(ctx context.Context, tokenID token.Identity) (string, error)
}
