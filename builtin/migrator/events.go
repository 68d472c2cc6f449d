// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import (
	"math/big"

	"github.com/vestry-labs/vestry/builtin/checkpoints"
	"github.com/vestry-labs/vestry/vestry"
)

// Event is emitted by a successful engine operation.
type Event interface {
	BlockNumber() uint32
}

// VoteChanged reports a change of a delegatee's checkpointed weight.
type VoteChanged struct {
	checkpoints.VoteChange
}

func (e *VoteChanged) BlockNumber() uint32 { return e.Block }

// GrantCreated reports a migration.
type GrantCreated struct {
	Caller     vestry.Address
	Recipient  vestry.Address
	Amount     *big.Int
	Allocation *big.Int
	Block      uint32
}

func (e *GrantCreated) BlockNumber() uint32 { return e.Block }

// GrantClaimed reports the payout and deletion of a grant.
type GrantClaimed struct {
	Recipient vestry.Address
	Withdrawn *big.Int
	Returned  *big.Int
	Block     uint32
}

func (e *GrantClaimed) BlockNumber() uint32 { return e.Block }

// GrantDelegated reports a change of delegatee.
type GrantDelegated struct {
	Recipient vestry.Address
	From      vestry.Address
	To        vestry.Address
	Block     uint32
}

func (e *GrantDelegated) BlockNumber() uint32 { return e.Block }
