// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vestry-labs/vestry/api/events"
)

// Message is one log entry pushed to a subscriber. Exactly one of Vote and
// Grant is set, as told by Type.
type Message struct {
	Type  string             `json:"type"`
	Vote  *events.VoteChange `json:"vote,omitempty"`
	Grant *events.GrantEvent `json:"grant,omitempty"`
}

// message types, also the kind query values
const (
	TypeVote  = "vote"
	TypeGrant = "grant"
)

// cursor is the position of the last entry sent from one log table.
type cursor struct {
	block, index uint32
}

// after reports whether the entry at block and index was not sent yet.
func (c *cursor) after(block, index uint32) bool {
	return c == nil || block > c.block || (block == c.block && index > c.index)
}
