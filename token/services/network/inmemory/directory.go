/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package inmemory

import (
	"context"
	"sort"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

// Directory is a fixed mapping from token type to the address of the bank's pooled custody account
type Directory map[token.Identity]string

func (d Directory) CustodyAccount(_ context.Context, tokenID token.Identity) (string, error) {
	address, ok := d[tokenID]
	if !ok {
		return "", errors.Wrapf(driver.ErrTokenMismatch, "no custody account for [%s]", tokenID)
	}
	return address, nil
}

// Addresses returns the custody addresses sorted
func (d Directory) Addresses() []string {
	res := make([]string, 0, len(d))
	for _, address := range d {
		res = append(res, address)
	}
	sort.Strings(res)
	return res
}
