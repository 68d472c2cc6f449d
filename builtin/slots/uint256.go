// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/vestry"
)

var (
	errUnderflow = errors.New("uint256 underflow")
	errOverflow  = errors.New("uint256 overflow")
)

// Uint256 is an unsigned 256-bit counter stored in a single slot.
type Uint256 struct {
	ctx *Context
	pos vestry.Bytes32
}

func NewUint256(ctx *Context, pos vestry.Bytes32) *Uint256 {
	return &Uint256{ctx: ctx, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.ctx.state.GetStorage(u.ctx.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(v[:]), nil
}

// Set stores value, which must fit in 256 unsigned bits.
func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errUnderflow
	}
	if value.BitLen() > 256 {
		return errOverflow
	}
	u.ctx.state.SetStorage(u.ctx.address, u.pos, vestry.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(delta *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Add(v, delta))
}

// Sub fails rather than wrapping below zero, leaving the slot untouched.
func (u *Uint256) Sub(delta *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Sub(v, delta))
}
