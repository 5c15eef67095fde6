/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bank

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hyperledger-labs/token-custody/token/driver"
	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/pkg/errors"
)

// Bank is the whitelist registry of the token types the bank accepts.
// Reads are served from an immutable snapshot and never wait for a writer.
// Writers are serialized among themselves.
type Bank struct {
	authority driver.Identity

	writeLock sync.Mutex
	accepted  atomic.Pointer[tokenSet]
}

type tokenSet map[token.Identity]struct{}

// NewBank returns an empty registry administered by the passed authority
func NewBank(authority driver.Identity) *Bank {
	b := &Bank{authority: authority}
	b.accepted.Store(&tokenSet{})
	return b
}

// Restore returns a registry holding the passed tokens.
// Duplicates are collapsed.
func Restore(authority driver.Identity, tokens ...token.Identity) *Bank {
	set := make(tokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	b := &Bank{authority: authority}
	b.accepted.Store(&set)
	return b
}

func (b *Bank) Authority() driver.Identity {
	return b.authority
}

// AddToken whitelists the passed token type.
// It fails with driver.ErrAlreadyWhitelisted if the token type is already accepted.
func (b *Bank) AddToken(id token.Identity) error {
	return b.AddTokenWith(id, nil)
}

// AddTokenWith whitelists the passed token type after persist succeeds.
// If persist fails the registry is left unchanged.
func (b *Bank) AddTokenWith(id token.Identity, persist func(token.Identity) error) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	current := *b.accepted.Load()
	if _, ok := current[id]; ok {
		return errors.Wrapf(driver.ErrAlreadyWhitelisted, "token [%s]", id)
	}
	if persist != nil {
		if err := persist(id); err != nil {
			return err
		}
	}
	next := make(tokenSet, len(current)+1)
	for t := range current {
		next[t] = struct{}{}
	}
	next[id] = struct{}{}
	b.accepted.Store(&next)
	return nil
}

// IsWhitelisted tells whether the passed token type is accepted by the bank
func (b *Bank) IsWhitelisted(id token.Identity) bool {
	_, ok := (*b.accepted.Load())[id]
	return ok
}

// Tokens returns the accepted token types sorted by their byte representation
func (b *Bank) Tokens() []token.Identity {
	current := *b.accepted.Load()
	res := make([]token.Identity, 0, len(current))
	for t := range current {
		res = append(res, t)
	}
	slices.SortFunc(res, token.Identity.Compare)
	return res
}

func (b *Bank) Size() int {
	return len(*b.accepted.Load())
}
