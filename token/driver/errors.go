/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package driver

import "github.com/pkg/errors"

var (
	// ErrInvalidToken is returned when the token type is not whitelisted
	ErrInvalidToken = errors.New("the provided token is not supported by the bank")
	// ErrAlreadyWhitelisted is returned when adding a token type already whitelisted
	ErrAlreadyWhitelisted = errors.New("token already whitelisted")
	// ErrInsufficientWalletBalance is returned when the depositor's external account cannot cover a deposit
	ErrInsufficientWalletBalance = errors.New("insufficient token balance in wallet")
	// ErrInsufficientBalance is returned by a ledger debit exceeding the recorded balance
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientUserBalance is returned when a withdrawal exceeds the depositor's entitlement
	ErrInsufficientUserBalance = errors.New("not enough tokens in account to withdraw")
	// ErrInvalidAmount is returned for zero amounts
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrLedgerOverflow is returned when a credit would overflow the recorded balance
	ErrLedgerOverflow = errors.New("ledger overflow")
	// ErrTransferFailed is returned when the network rejects a transfer
	ErrTransferFailed = errors.New("token transfer failed")
	// ErrTokenMismatch is returned when an external account does not hold the requested token type
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrUnauthorized is returned when the caller is not allowed to perform the operation
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBankNotInitialized is returned when no bank has been initialized yet
	ErrBankNotInitialized = errors.New("bank not initialized")
	// ErrBankAlreadyInitialized is returned when initializing a bank twice
	ErrBankAlreadyInitialized = errors.New("bank already initialized")
	// ErrAccountNotFound is returned when the owner has no ledger account
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when initializing an account twice
	ErrAccountExists = errors.New("account already exists")
)

// NewTransferError reports that the network rejected a transfer because of cause.
// The result matches both ErrTransferFailed and cause with errors.Is.
func NewTransferError(cause error) error {
	return &TransferError{Cause: cause}
}

type TransferError struct {
	Cause error
}

func (e *TransferError) Error() string {
	return ErrTransferFailed.Error() + ": " + e.Cause.Error()
}

func (e *TransferError) Unwrap() []error {
	return []error{ErrTransferFailed, e.Cause}
}
