/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package driver

// Identity represents a principal: a depositor, the bank authority or the owner of an
// external token account. Signatures backing an identity are verified by the network
// before any operation reaches this module.
type Identity string

func (id Identity) IsNone() bool {
	return len(id) == 0
}

func (id Identity) String() string {
	return string(id)
}

// Authorization is the pre-validated fact that Caller signed the current operation.
type Authorization struct {
	Caller Identity
}
