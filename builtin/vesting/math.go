// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vestry-labs/vestry/builtin/reverts"
)

var (
	ErrOverflow     = reverts.New("vesting: arithmetic overflow")
	ErrDivideByZero = reverts.New("vesting: division by zero")
)

func toUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrOverflow
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}

// MulDiv returns floor(x * y / d). The product is computed on 512 bits so
// only a quotient above 256 bits overflows.
func MulDiv(x, y, d *big.Int) (*big.Int, error) {
	ux, err := toUint256(x)
	if err != nil {
		return nil, err
	}
	uy, err := toUint256(y)
	if err != nil {
		return nil, err
	}
	ud, err := toUint256(d)
	if err != nil {
		return nil, err
	}
	if ud.IsZero() {
		return nil, ErrDivideByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// Mul returns x * y, failing when the result exceeds 256 bits.
func Mul(x, y *big.Int) (*big.Int, error) {
	ux, err := toUint256(x)
	if err != nil {
		return nil, err
	}
	uy, err := toUint256(y)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).MulOverflow(ux, uy)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// SubClamp returns x - y, or zero when y > x.
func SubClamp(x, y *big.Int) *big.Int {
	if x == nil || y == nil {
		if x == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(x)
	}
	if x.Cmp(y) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(x, y)
}

// Min returns a copy of the smaller of x and y.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
