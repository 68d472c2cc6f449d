// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/config"
	"github.com/vestry-labs/vestry/vestry"
)

// operation names
const (
	OpMint        = "mint"
	OpBurn        = "burn"
	OpApprove     = "approve"
	OpTransfer    = "transfer"
	OpMigrate     = "migrate"
	OpClaim       = "claim"
	OpDelegate    = "delegate"
	OpUpdatePower = "update-power"
)

// Op is one asset or engine operation, as written in replay scripts and
// posted to the ops endpoint. Block 0 means the block after the head.
type Op struct {
	Op      string         `yaml:"op" json:"op"`
	Block   uint32         `yaml:"block,omitempty" json:"block,omitempty"`
	Token   string         `yaml:"token,omitempty" json:"token,omitempty"`
	Caller  vestry.Address `yaml:"caller,omitempty" json:"caller,omitempty"`
	To      vestry.Address `yaml:"to,omitempty" json:"to,omitempty"`
	Account vestry.Address `yaml:"account,omitempty" json:"account,omitempty"`
	Amount  *config.Amount `yaml:"amount,omitempty" json:"amount,omitempty"`
}

// Validate checks the shape of op without reading state.
func (op *Op) Validate() error {
	switch op.Op {
	case OpMint, OpBurn, OpApprove, OpTransfer:
		if op.Token != SourceToken && op.Token != TargetToken {
			return fmt.Errorf("%s: unknown token %q", op.Op, op.Token)
		}
	case OpMigrate:
	case OpClaim, OpDelegate, OpUpdatePower:
		return nil
	default:
		return errors.Errorf("unknown op %q", op.Op)
	}
	if op.Amount == nil {
		return fmt.Errorf("%s: amount is required", op.Op)
	}
	return nil
}

// Apply runs op at block. The minter defaults to the admin, the spender of
// an approval to the engine.
func (rt *Runtime) Apply(op *Op, block uint32) error {
	if err := op.Validate(); err != nil {
		return err
	}
	switch op.Op {
	case OpMint, OpBurn, OpApprove, OpTransfer:
		t, err := rt.Token(op.Token)
		if err != nil {
			return err
		}
		switch op.Op {
		case OpMint, OpBurn:
			caller := op.Caller
			if caller.IsZero() {
				caller = rt.cfg.Admin
			}
			if op.Op == OpMint {
				return t.Mint(caller, op.To, op.Amount.Int())
			}
			return t.Burn(caller, op.Account, op.Amount.Int())
		case OpApprove:
			spender := op.To
			if spender.IsZero() {
				spender = rt.engine.Address()
			}
			return t.Approve(op.Caller, spender, op.Amount.Int())
		default:
			return t.Transfer(op.Caller, op.To, op.Amount.Int())
		}
	case OpMigrate:
		_, err := rt.engine.Migrate(op.Caller, op.To, op.Amount.Int(), block)
		return err
	case OpClaim:
		_, err := rt.engine.Claim(op.Caller, block)
		return err
	case OpDelegate:
		return rt.engine.Delegate(op.Caller, op.To, block)
	default:
		_, err := rt.engine.UpdateVotingPower(op.Account, block)
		return err
	}
}
