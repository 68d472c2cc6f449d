// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/vestry"
)

type VoteChange struct {
	BlockNumber uint32         `json:"blockNumber"`
	Index       uint32         `json:"index"`
	From        vestry.Address `json:"from"`
	To          vestry.Address `json:"to"`
	Delegatee   vestry.Address `json:"delegatee"`
	Delta       *hexutil.Big   `json:"delta"` // signed
}

type GrantEvent struct {
	BlockNumber  uint32                `json:"blockNumber"`
	Index        uint32                `json:"index"`
	Kind         logdb.GrantEventKind  `json:"kind"`
	Recipient    vestry.Address        `json:"recipient"`
	Counterparty vestry.Address        `json:"counterparty"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	Extra        *math.HexOrDecimal256 `json:"extra"`
}

func ConvertVoteChange(c *logdb.VoteChange) *VoteChange {
	return &VoteChange{
		BlockNumber: c.BlockNumber,
		Index:       c.Index,
		From:        c.From,
		To:          c.To,
		Delegatee:   c.Delegatee,
		Delta:       (*hexutil.Big)(c.Delta),
	}
}

func ConvertGrantEvent(ev *logdb.GrantEvent) *GrantEvent {
	return &GrantEvent{
		BlockNumber:  ev.BlockNumber,
		Index:        ev.Index,
		Kind:         ev.Kind,
		Recipient:    ev.Recipient,
		Counterparty: ev.Counterparty,
		Amount:       utils.Amount(ev.Amount),
		Extra:        utils.Amount(ev.Extra),
	}
}
