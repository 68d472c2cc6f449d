// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen generates random fixtures for tests.
package datagen

import (
	"crypto/rand"

	"github.com/vestry-labs/vestry/vestry"
)

func RandAddress() (addr vestry.Address) {
	rand.Read(addr[:])
	return
}
