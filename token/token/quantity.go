/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrOverflow is returned when an addition does not fit the quantity precision
	ErrOverflow = errors.New("quantity overflow")
	// ErrUnderflow is returned when a subtraction would make a quantity negative
	ErrUnderflow = errors.New("quantity underflow")
)

// Precision is the precision in bits of a Quantity
const Precision = 64

// Quantity models a token quantity in the smallest denomination of its token type.
// Quantities are values, operations never modify the receiver.
type Quantity uint64

// ToQuantity converts a string q to a Quantity.
// Argument q is supposed to be formatted following big.Int#scan specification.
func ToQuantity(q string) (Quantity, error) {
	v, success := big.NewInt(0).SetString(q, 0)
	if !success {
		return 0, errors.Errorf("invalid input [%s,%d]", q, Precision)
	}
	if v.Sign() < 0 {
		return 0, errors.New("quantity must be larger than 0")
	}
	if v.BitLen() > Precision {
		return 0, errors.Errorf("%s has precision %d > %d", q, v.BitLen(), Precision)
	}
	return Quantity(v.Uint64()), nil
}

// Add returns q + b.
// If an overflow occurs, it returns ErrOverflow.
func (q Quantity) Add(b Quantity) (Quantity, error) {
	sum := q + b
	if sum < q {
		return q, errors.Wrapf(ErrOverflow, "%d + %d", q, b)
	}
	return sum, nil
}

// Sub returns q - b.
// If b is larger than q, it returns ErrUnderflow.
func (q Quantity) Sub(b Quantity) (Quantity, error) {
	if b > q {
		return q, errors.Wrapf(ErrUnderflow, "%d < %d", q, b)
	}
	return q - b, nil
}

// Cmp compares q with b
func (q Quantity) Cmp(b Quantity) int {
	if q < b {
		return -1
	} else if q > b {
		return 1
	}
	return 0
}

func (q Quantity) IsZero() bool {
	return q == 0
}

// Hex returns the hexadecimal representation of this quantity
func (q Quantity) Hex() string {
	return "0x" + strconv.FormatUint(uint64(q), 16)
}

// Decimal returns the decimal representation of this quantity
func (q Quantity) Decimal() string {
	return strconv.FormatUint(uint64(q), 10)
}

func (q Quantity) ToBigInt() *big.Int {
	return big.NewInt(0).SetUint64(uint64(q))
}
