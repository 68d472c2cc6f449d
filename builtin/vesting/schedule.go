// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vesting computes allocations, withdrawable amounts and voting weights of grants.
// Every function is pure: results depend only on the grant, the block and the schedule.
package vesting

import (
	"math/big"

	"github.com/vestry-labs/vestry/builtin/grants"
	"github.com/vestry-labs/vestry/vestry"
)

// Terms are the economic fields of a grant fixed at migration.
type Terms struct {
	Allocation *big.Int
	Created    uint32
	Cliff      uint32
	Expiration uint32
}

// Grant builds a fresh grant for the terms, delegated to delegatee with the given initial weight.
func (t *Terms) Grant(delegatee vestry.Address, votingPower *big.Int) *grants.Grant {
	return &grants.Grant{
		Allocation:        new(big.Int).Set(t.Allocation),
		Withdrawn:         new(big.Int),
		Created:           t.Created,
		Cliff:             t.Cliff,
		Expiration:        t.Expiration,
		LatestVotingPower: new(big.Int).Set(votingPower),
		Delegatee:         delegatee,
	}
}

// Schedule is a vesting policy.
type Schedule interface {
	// Terms computes the grant terms of migrating amount at block.
	Terms(amount *big.Int, block uint32) (*Terms, error)
	// Withdrawable returns the amount of the grant payable at block.
	Withdrawable(g *grants.Grant, block uint32) (*big.Int, error)
	// VotingPower returns the weight the grant carries at block.
	VotingPower(g *grants.Grant, block uint32) (*big.Int, error)
}

var (
	_ Schedule = (*BonusSchedule)(nil)
	_ Schedule = (*FlatSchedule)(nil)
)
