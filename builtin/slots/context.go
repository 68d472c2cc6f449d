// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slots lays typed values out over the storage slots of a builtin
// ledger. Every ledger owns the slots under its address.
package slots

import (
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

// Context binds a ledger address to the state holding its slots.
type Context struct {
	address vestry.Address
	state   *state.State
}

func NewContext(address vestry.Address, state *state.State) *Context {
	return &Context{address: address, state: state}
}

func (c *Context) Address() vestry.Address { return c.address }
func (c *Context) State() *state.State     { return c.state }
