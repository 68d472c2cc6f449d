// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package grants

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/builtin/grants"
	"github.com/vestry-labs/vestry/vestry"
)

// Grant is the response body of a grant. An absent grant has Exists false and zero fields.
type Grant struct {
	Recipient         vestry.Address        `json:"recipient"`
	Exists            bool                  `json:"exists"`
	Allocation        *math.HexOrDecimal256 `json:"allocation"`
	Withdrawn         *math.HexOrDecimal256 `json:"withdrawn"`
	Created           uint32                `json:"created"`
	Cliff             uint32                `json:"cliff"`
	Expiration        uint32                `json:"expiration"`
	LatestVotingPower *math.HexOrDecimal256 `json:"latestVotingPower"`
	Delegatee         vestry.Address        `json:"delegatee"`
}

func convertGrant(recipient vestry.Address, g *grants.Grant) *Grant {
	return &Grant{
		Recipient:         recipient,
		Exists:            !g.IsEmpty(),
		Allocation:        utils.Amount(g.Allocation),
		Withdrawn:         utils.Amount(g.Withdrawn),
		Created:           g.Created,
		Cliff:             g.Cliff,
		Expiration:        g.Expiration,
		LatestVotingPower: utils.Amount(g.LatestVotingPower),
		Delegatee:         g.Delegatee,
	}
}

type Withdrawable struct {
	Block  uint32                `json:"block"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Summary describes the engine as a whole.
type Summary struct {
	Engine          vestry.Address        `json:"engine"`
	Policy          string                `json:"policy"`
	LiveGrants      uint64                `json:"liveGrants"`
	Unassigned      *math.HexOrDecimal256 `json:"unassigned"`
	StalenessWindow uint32                `json:"stalenessWindow"`
	Head            uint32                `json:"head"`
}
