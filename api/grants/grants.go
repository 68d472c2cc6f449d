// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package grants

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/builtin/grants"
	"github.com/vestry-labs/vestry/builtin/migrator"
)

type Grants struct {
	engine *migrator.Engine
	head   utils.Head
	view   utils.View
}

func New(engine *migrator.Engine, head utils.Head, view utils.View) *Grants {
	return &Grants{
		engine,
		head,
		view,
	}
}

func (g *Grants) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	summary := &Summary{
		Engine:          g.engine.Address(),
		Policy:          g.engine.Policy().Name(),
		StalenessWindow: g.engine.StalenessWindow(),
	}
	if err := g.view(func() error {
		count, err := g.engine.LiveGrants()
		if err != nil {
			return err
		}
		unassigned, err := g.engine.Unassigned()
		if err != nil {
			return err
		}
		summary.LiveGrants = count
		summary.Unassigned = utils.Amount(unassigned)
		summary.Head = g.head()
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

func (g *Grants) handleGetGrant(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var grant *grants.Grant
	if err := g.view(func() (err error) {
		grant, err = g.engine.GetGrant(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, convertGrant(addr, grant))
}

func (g *Grants) handleGetWithdrawable(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	res := &Withdrawable{}
	if err := g.view(func() error {
		block, err := utils.ParseBlock("block", req.URL.Query().Get("block"), g.head())
		if err != nil {
			return err
		}
		amount, err := g.engine.Withdrawable(addr, block)
		if err != nil {
			return err
		}
		res.Block, res.Amount = block, utils.Amount(amount)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (g *Grants) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /grants").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetSummary))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /grants/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetGrant))
	sub.Path("/{address}/withdrawable").
		Methods(http.MethodGet).
		Name("GET /grants/{address}/withdrawable").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetWithdrawable))
}
