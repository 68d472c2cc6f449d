// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/vestry"
)

type Accounts struct {
	source *token.Token
	target *token.Token
	engine vestry.Address
	view   utils.View
}

// New create accounts api. Allowances are reported towards engine.
func New(source, target *token.Token, engine vestry.Address, view utils.View) *Accounts {
	return &Accounts{
		source,
		target,
		engine,
		view,
	}
}

type Balance struct {
	Token     vestry.Address        `json:"token"`
	Balance   *math.HexOrDecimal256 `json:"balance"`
	Allowance *math.HexOrDecimal256 `json:"allowance"` // granted to the engine
}

type Account struct {
	Address vestry.Address `json:"address"`
	Source  *Balance       `json:"source"`
	Target  *Balance       `json:"target"`
}

type Supply struct {
	Source *math.HexOrDecimal256 `json:"source"`
	Target *math.HexOrDecimal256 `json:"target"`
}

func (a *Accounts) balance(t *token.Token, addr vestry.Address) (*Balance, error) {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	allowance, err := t.Allowance(addr, a.engine)
	if err != nil {
		return nil, err
	}
	return &Balance{
		Token:     t.Address(),
		Balance:   utils.Amount(bal),
		Allowance: utils.Amount(allowance),
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	acc := &Account{Address: addr}
	if err := a.view(func() (err error) {
		if acc.Source, err = a.balance(a.source, addr); err != nil {
			return err
		}
		acc.Target, err = a.balance(a.target, addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	var source, target *big.Int
	if err := a.view(func() (err error) {
		if source, err = a.source.TotalSupply(); err != nil {
			return err
		}
		target, err = a.target.TotalSupply()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{Source: utils.Amount(source), Target: utils.Amount(target)})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("GET /accounts/supply").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetSupply))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
