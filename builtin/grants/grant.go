// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package grants

import (
	"math/big"

	"github.com/vestry-labs/vestry/vestry"
)

// Grant is a recipient's pending entitlement of target asset.
type Grant struct {
	Allocation *big.Int // total amount owed, immutable
	Withdrawn  *big.Int // amount already paid out

	Created    uint32 // block of the migration
	Cliff      uint32 // vesting start, Created <= Cliff
	Expiration uint32 // fully vested from here, Cliff <= Expiration

	LatestVotingPower *big.Int       // weight last pushed to the delegatee
	Delegatee         vestry.Address // account credited with the voting weight
}

// IsEmpty returns whether the entry can be treated as absent.
func (g *Grant) IsEmpty() bool {
	return g == nil || g.Allocation == nil || g.Allocation.Sign() == 0
}

// Copy returns a deep copy of the grant.
func (g *Grant) Copy() *Grant {
	cpy := *g
	cpy.Allocation = copyBig(g.Allocation)
	cpy.Withdrawn = copyBig(g.Withdrawn)
	cpy.LatestVotingPower = copyBig(g.LatestVotingPower)
	return &cpy
}

// normalize replaces nil amounts by zero.
func (g *Grant) normalize() *Grant {
	if g.Allocation == nil {
		g.Allocation = new(big.Int)
	}
	if g.Withdrawn == nil {
		g.Withdrawn = new(big.Int)
	}
	if g.LatestVotingPower == nil {
		g.LatestVotingPower = new(big.Int)
	}
	return g
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
