/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix returns a stringer that prints at most the first 20 characters of id
// followed by a short digest of the whole value.
func Prefix(id string) fmt.Stringer {
	return prefix(id)
}

type prefix string

func (w prefix) String() string {
	s := string(w)
	if len(s) <= 20 {
		return strings.ToValidUTF8(s, "X")
	}
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%s~%s", strings.ToValidUTF8(s[:20], "X"), hex.EncodeToString(h[:4]))
}

func Printable(id string) fmt.Stringer {
	return printable(id)
}

type printable string

func (w printable) String() string {
	return strings.ToValidUTF8(string(w), "X")
}

// Keys returns a stringer that prints the keys of m
func Keys[K comparable, V any](m map[K]V) fmt.Stringer {
	return keys[K, V](m)
}

type keys[K comparable, V any] map[K]V

func (k keys[K, V]) String() string {
	parts := make([]string, 0, len(k))
	for key := range k {
		parts = append(parts, fmt.Sprintf("%v", key))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
