/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/
package token

import (
	"bytes"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// IdentitySize is the length in bytes of a token identity
const IdentitySize = 32

// Identity identifies a fungible token type (a mint).
// Two identities are the same token type if and only if their bytes are equal.
type Identity [IdentitySize]byte

// NewIdentity returns the identity carried by the passed raw bytes.
func NewIdentity(raw []byte) (Identity, error) {
	var id Identity
	if len(raw) != IdentitySize {
		return id, errors.Errorf("invalid identity length, expected %d, got %d", IdentitySize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// MustIdentity is like NewIdentity but panics on error
func MustIdentity(raw []byte) Identity {
	id, err := NewIdentity(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseIdentity decodes the base58 representation of an identity
func ParseIdentity(s string) (Identity, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "invalid base58 identity [%s]", s)
	}
	return NewIdentity(raw)
}

// String returns the base58 representation of this identity
func (id Identity) String() string {
	return base58.Encode(id[:])
}

func (id Identity) Bytes() []byte {
	return bytes.Clone(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Compare returns an integer comparing two identities lexicographically.
func (id Identity) Compare(other Identity) int {
	return bytes.Compare(id[:], other[:])
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
