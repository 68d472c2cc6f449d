// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vestry-labs/vestry/vestry"
)

// VoteChange is a stored change of a delegatee's weight.
type VoteChange struct {
	BlockNumber uint32
	Index       uint32
	From        vestry.Address
	To          vestry.Address
	Delegatee   vestry.Address
	Delta       *big.Int // signed
}

type GrantEventKind string

const (
	GrantCreated   GrantEventKind = "created"
	GrantClaimed   GrantEventKind = "claimed"
	GrantDelegated GrantEventKind = "delegated"
)

// GrantEvent is a stored grant lifecycle event.
// Amount and Extra depend on Kind: the migrated amount and allocation of a
// creation, the withdrawn and returned amounts of a claim, nothing for a delegation.
type GrantEvent struct {
	BlockNumber  uint32
	Index        uint32
	Kind         GrantEventKind
	Recipient    vestry.Address
	Counterparty vestry.Address // caller of a creation, new delegatee of a delegation
	Amount       *big.Int
	Extra        *big.Int
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive block range. To below From means no upper bound.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// VoteFilter selects vote changes touching Account, as delegatee or as either side.
type VoteFilter struct {
	Account *vestry.Address
	Range   *Range
	Options *Options
	Order   Order // default asc
}

type GrantFilter struct {
	Recipient *vestry.Address
	Kind      GrantEventKind // empty matches all
	Range     *Range
	Options   *Options
	Order     Order // default asc
}
