// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/grants"
	"github.com/vestry-labs/vestry/vestry"
)

// FlatSchedule is the flat-vesting variant: no bonus, the whole allocation
// vests linearly up to Expiration. Locked tokens still count for voting,
// discounted by UnvestedMultiplier percent.
type FlatSchedule struct {
	ConversionMultiplier *big.Int
	UnvestedMultiplier   uint64 // percent, 0..100
	Start                uint32 // global vesting start, 0 means the grant's creation
	Cliff                uint32
	Expiration           uint32
}

func (s *FlatSchedule) Validate() error {
	if s.ConversionMultiplier == nil || s.ConversionMultiplier.Sign() <= 0 {
		return errors.New("conversion multiplier must be positive")
	}
	if s.UnvestedMultiplier > 100 {
		return errors.New("unvested multiplier must not exceed 100")
	}
	if s.Cliff > s.Expiration {
		return errors.New("cliff must not be after expiration")
	}
	if s.Start > s.Expiration {
		return errors.New("start must not be after expiration")
	}
	return nil
}

// Allocation returns amount * ConversionMultiplier.
func (s *FlatSchedule) Allocation(amount *big.Int) (*big.Int, error) {
	return Mul(amount, s.ConversionMultiplier)
}

func (s *FlatSchedule) Terms(amount *big.Int, block uint32) (*Terms, error) {
	allocation, err := s.Allocation(amount)
	if err != nil {
		return nil, err
	}
	return &Terms{
		Allocation: allocation,
		Created:    block,
		Cliff:      maxUint32(block, s.Cliff),
		Expiration: maxUint32(block, s.Expiration),
	}, nil
}

func (s *FlatSchedule) vested(g *grants.Grant, block uint32) (*big.Int, error) {
	if block < g.Cliff {
		return new(big.Int), nil
	}
	if block >= g.Expiration {
		return new(big.Int).Set(g.Allocation), nil
	}
	start := s.Start
	if start == 0 {
		start = g.Created
	}
	if block <= start {
		return new(big.Int), nil
	}
	vested, err := MulDiv(
		g.Allocation,
		big.NewInt(int64(block-start)),
		big.NewInt(int64(g.Expiration-start)),
	)
	if err != nil {
		return nil, err
	}
	return Min(vested, g.Allocation), nil
}

func (s *FlatSchedule) Withdrawable(g *grants.Grant, block uint32) (*big.Int, error) {
	if g.IsEmpty() {
		return new(big.Int), nil
	}
	vested, err := s.vested(g, block)
	if err != nil {
		return nil, err
	}
	return SubClamp(vested, g.Withdrawn), nil
}

// VotingPower returns withdrawable + locked * UnvestedMultiplier / 100.
func (s *FlatSchedule) VotingPower(g *grants.Grant, block uint32) (*big.Int, error) {
	if g.IsEmpty() {
		return new(big.Int), nil
	}
	withdrawable, err := s.Withdrawable(g, block)
	if err != nil {
		return nil, err
	}
	locked := SubClamp(SubClamp(g.Allocation, g.Withdrawn), withdrawable)
	weighted, err := MulDiv(locked, new(big.Int).SetUint64(s.UnvestedMultiplier), vestry.PercentBase)
	if err != nil {
		return nil, err
	}
	return weighted.Add(weighted, withdrawable), nil
}
