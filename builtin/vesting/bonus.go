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

// BonusSchedule is the bonus-decay variant. Migrating before Cliff earns the
// full bonus factor, which decays linearly to One between Cliff and Expiration.
type BonusSchedule struct {
	ConversionMultiplier *big.Int // target units per source unit
	FullBonusFactor      *big.Int // scaled by vestry.One
	Cliff                uint32
	Expiration           uint32
}

func (s *BonusSchedule) Validate() error {
	if s.ConversionMultiplier == nil || s.ConversionMultiplier.Sign() <= 0 {
		return errors.New("conversion multiplier must be positive")
	}
	if s.FullBonusFactor == nil || s.FullBonusFactor.Cmp(vestry.One) < 0 {
		return errors.New("full bonus factor must be at least one")
	}
	if s.Cliff > s.Expiration {
		return errors.New("cliff must not be after expiration")
	}
	return nil
}

// Base converts a source amount into the base target amount.
func (s *BonusSchedule) Base(amount *big.Int) (*big.Int, error) {
	return Mul(amount, s.ConversionMultiplier)
}

// BonusFactorAt returns the bonus factor of migrating at block.
func (s *BonusSchedule) BonusFactorAt(block uint32) (*big.Int, error) {
	if block <= s.Cliff {
		return new(big.Int).Set(s.FullBonusFactor), nil
	}
	if block >= s.Expiration {
		return new(big.Int).Set(vestry.One), nil
	}
	// 1 + (full - 1) * (expiration - block) / (expiration - cliff)
	bonus, err := MulDiv(
		SubClamp(s.FullBonusFactor, vestry.One),
		big.NewInt(int64(s.Expiration-block)),
		big.NewInt(int64(s.Expiration-s.Cliff)),
	)
	if err != nil {
		return nil, err
	}
	return bonus.Add(bonus, vestry.One), nil
}

// Allocation returns base * bonusFactor(block) / One.
func (s *BonusSchedule) Allocation(amount *big.Int, block uint32) (*big.Int, error) {
	base, err := s.Base(amount)
	if err != nil {
		return nil, err
	}
	factor, err := s.BonusFactorAt(block)
	if err != nil {
		return nil, err
	}
	return MulDiv(base, factor, vestry.One)
}

func (s *BonusSchedule) Terms(amount *big.Int, block uint32) (*Terms, error) {
	allocation, err := s.Allocation(amount, block)
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

// RecoverBase re-derives the base amount of a grant from its allocation and
// the bonus factor in force when it was created.
func (s *BonusSchedule) RecoverBase(g *grants.Grant) (*big.Int, error) {
	factor, err := s.BonusFactorAt(g.Created)
	if err != nil {
		return nil, err
	}
	base, err := MulDiv(g.Allocation, vestry.One, factor)
	if err != nil {
		return nil, err
	}
	return Min(base, g.Allocation), nil
}

// vested returns the amount vested at block, before withdrawals.
func (s *BonusSchedule) vested(g *grants.Grant, block uint32) (*big.Int, error) {
	start := maxUint32(g.Created, g.Cliff)
	if block < start {
		return new(big.Int), nil
	}
	if block >= g.Expiration {
		return new(big.Int).Set(g.Allocation), nil
	}
	base, err := s.RecoverBase(g)
	if err != nil {
		return nil, err
	}
	vestedBonus, err := MulDiv(
		SubClamp(g.Allocation, base),
		big.NewInt(int64(block-start)),
		big.NewInt(int64(g.Expiration-start)),
	)
	if err != nil {
		return nil, err
	}
	return Min(base.Add(base, vestedBonus), g.Allocation), nil
}

func (s *BonusSchedule) Withdrawable(g *grants.Grant, block uint32) (*big.Int, error) {
	if g.IsEmpty() {
		return new(big.Int), nil
	}
	vested, err := s.vested(g, block)
	if err != nil {
		return nil, err
	}
	return SubClamp(vested, g.Withdrawn), nil
}

// VotingPower is the recovered base before vesting starts, and the
// withdrawable amount afterwards.
func (s *BonusSchedule) VotingPower(g *grants.Grant, block uint32) (*big.Int, error) {
	if g.IsEmpty() {
		return new(big.Int), nil
	}
	if block < maxUint32(g.Created, g.Cliff) {
		base, err := s.RecoverBase(g)
		if err != nil {
			return nil, err
		}
		return SubClamp(base, g.Withdrawn), nil
	}
	return s.Withdrawable(g, block)
}
