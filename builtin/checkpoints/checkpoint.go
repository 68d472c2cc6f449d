// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"encoding/binary"
	"math/big"

	"github.com/vestry-labs/vestry/vestry"
)

// Checkpoint records the cumulative weight of an account from Block on.
type Checkpoint struct {
	Block  uint32
	Weight *big.Int
}

// VoteChange describes a signed change of a delegatee's weight.
// From and To name the accounts the weight moved between, either may be zero.
type VoteChange struct {
	From      vestry.Address
	To        vestry.Address
	Delegatee vestry.Address
	Delta     *big.Int
	Block     uint32
}

type entryKey struct {
	account vestry.Address
	index   uint32
}

func (k entryKey) Bytes() []byte {
	b := make([]byte, 0, vestry.AddressLength+4)
	b = append(b, k.account[:]...)
	return binary.BigEndian.AppendUint32(b, k.index)
}

// EncodeHint encodes a checkpoint index as a lookup hint.
func EncodeHint(index uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, index)
}
