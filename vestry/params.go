// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vestry

import "math/big"

// fixed-point and schedule constants
var (
	// One is the scale of every fixed-point factor, e.g. bonus factors.
	One = big.NewInt(1e18)

	// DefaultStalenessWindow is the number of blocks a voting-power query
	// must trail the chain head by.
	DefaultStalenessWindow uint32 = 20

	// PercentBase is the denominator of percentage parameters.
	PercentBase = big.NewInt(100)
)
