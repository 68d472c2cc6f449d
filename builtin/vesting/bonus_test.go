// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/test/datagen"
	"github.com/vestry-labs/vestry/vestry"
)

func bigStr(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid number " + s)
	}
	return v
}

func newBonusSchedule() *BonusSchedule {
	return &BonusSchedule{
		ConversionMultiplier: big.NewInt(10),
		FullBonusFactor:      bigStr("1008333333333333333"),
		Cliff:                100,
		Expiration:           200,
	}
}

func TestBonusFactorAt(t *testing.T) {
	s := newBonusSchedule()

	tests := []struct {
		name  string
		block uint32
		want  string
	}{
		{"before cliff", 50, "1008333333333333333"},
		{"at cliff", 100, "1008333333333333333"},
		{"a quarter in", 125, "1006249999999999999"},
		{"halfway", 150, "1004166666666666666"},
		{"at expiration", 200, "1000000000000000000"},
		{"after expiration", 500, "1000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := s.BonusFactorAt(tt.block)
			require.NoError(t, err)
			assert.Equal(t, bigStr(tt.want), f)
		})
	}
}

func TestBonusTerms(t *testing.T) {
	s := newBonusSchedule()
	amount := bigStr("100000000000000000000")

	tests := []struct {
		name       string
		block      uint32
		allocation string
		cliff      uint32
		expiration uint32
	}{
		{"pre-cliff", 50, "1008333333333333333000", 100, 200},
		{"mid-schedule", 150, "1004166666666666666000", 150, 200},
		{"post-expiration", 250, "1000000000000000000000", 250, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := s.Terms(amount, tt.block)
			require.NoError(t, err)
			assert.Equal(t, bigStr(tt.allocation), terms.Allocation)
			assert.Equal(t, tt.block, terms.Created)
			assert.Equal(t, tt.cliff, terms.Cliff)
			assert.Equal(t, tt.expiration, terms.Expiration)

			g := terms.Grant(datagen.RandAddress(), new(big.Int))
			base, err := s.RecoverBase(g)
			require.NoError(t, err)
			assert.Equal(t, bigStr("1000000000000000000000"), base)
		})
	}
}

func TestBonusWithdrawable(t *testing.T) {
	s := newBonusSchedule()
	terms, err := s.Terms(bigStr("100000000000000000000"), 50)
	require.NoError(t, err)
	g := terms.Grant(datagen.RandAddress(), new(big.Int))

	tests := []struct {
		block        uint32
		withdrawable string
		votingPower  string
	}{
		{50, "0", "1000000000000000000000"},
		{99, "0", "1000000000000000000000"},
		{100, "1000000000000000000000", "1000000000000000000000"},
		{150, "1004166666666666666500", "1004166666666666666500"},
		{200, "1008333333333333333000", "1008333333333333333000"},
		{1000, "1008333333333333333000", "1008333333333333333000"},
	}
	for _, tt := range tests {
		w, err := s.Withdrawable(g, tt.block)
		require.NoError(t, err)
		assert.Equal(t, bigStr(tt.withdrawable), w, "withdrawable at %d", tt.block)

		vp, err := s.VotingPower(g, tt.block)
		require.NoError(t, err)
		assert.Equal(t, bigStr(tt.votingPower), vp, "voting power at %d", tt.block)
	}

	// halfway claim returns the unvested half of the bonus
	w, err := s.Withdrawable(g, 150)
	require.NoError(t, err)
	assert.Equal(t, bigStr("4166666666666666500"), SubClamp(g.Allocation, w))
}

func TestBonusValidate(t *testing.T) {
	assert.NoError(t, newBonusSchedule().Validate())

	s := newBonusSchedule()
	s.FullBonusFactor = big.NewInt(1)
	assert.Error(t, s.Validate())

	s = newBonusSchedule()
	s.Cliff = 300
	assert.Error(t, s.Validate())

	s = newBonusSchedule()
	s.ConversionMultiplier = new(big.Int)
	assert.Error(t, s.Validate())
}

func TestBonusOverflow(t *testing.T) {
	s := newBonusSchedule()
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := s.Allocation(huge, 10)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = s.Allocation(new(big.Int).Neg(vestry.One), 10)
	assert.ErrorIs(t, err, ErrOverflow)
}
