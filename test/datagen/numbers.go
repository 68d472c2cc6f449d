// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand"

	"github.com/vestry-labs/vestry/vestry"
)

// RandAmount returns a random token amount between 1 and n whole tokens.
func RandAmount(n int64) *big.Int {
	whole := big.NewInt(mathrand.Int63n(n) + 1) //#nosec G404
	return whole.Mul(whole, vestry.One)
}
