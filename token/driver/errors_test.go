/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package driver

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTransferError(t *testing.T) {
	err := errors.Wrap(NewTransferError(errors.Wrap(ErrInsufficientWalletBalance, "alice holds 10")), "deposit")

	assert.True(t, errors.Is(err, ErrTransferFailed))
	assert.True(t, errors.Is(err, ErrInsufficientWalletBalance))
	assert.False(t, errors.Is(err, ErrInsufficientUserBalance))
	assert.Equal(t, "deposit: token transfer failed: alice holds 10: insufficient token balance in wallet", err.Error())

	var transferErr *TransferError
	assert.True(t, errors.As(err, &transferErr))
}
