// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package votes

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/builtin/checkpoints"
	"github.com/vestry-labs/vestry/builtin/migrator"
)

type Votes struct {
	engine *migrator.Engine
	head   utils.Head
	view   utils.View
}

func New(engine *migrator.Engine, head utils.Head, view utils.View) *Votes {
	return &Votes{
		engine,
		head,
		view,
	}
}

type VotePower struct {
	Block     uint32                `json:"block"`
	Current   uint32                `json:"current"`
	VotePower *math.HexOrDecimal256 `json:"votePower"`
}

type Checkpoint struct {
	Block  uint32                `json:"block"`
	Weight *math.HexOrDecimal256 `json:"weight"`
}

func (v *Votes) handleGetVotePower(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	query := req.URL.Query()
	hint, err := utils.ParseHex("hint", query.Get("hint"))
	if err != nil {
		return err
	}

	res := &VotePower{}
	if err := v.view(func() error {
		head := v.head()
		current, err := utils.ParseBlock("current", query.Get("current"), head)
		if err != nil {
			return err
		}
		// the present is the head at most, later blocks are not final yet
		if current > head {
			return utils.BadRequest(errors.Errorf("current: block %d is ahead of the head %d", current, head))
		}
		block, err := utils.ParseBlock("block", query.Get("block"), 0)
		if err != nil {
			return err
		}
		if query.Get("block") == "" {
			// the newest block readable from current
			lag := v.engine.StalenessWindow()
			if current < lag {
				return utils.BadRequest(errors.Errorf("no block is out of the staleness window at %d", current))
			}
			block = current - lag
		}
		power, err := v.engine.QueryVotePower(addr, block, current, hint)
		if err != nil {
			return err
		}
		res.Block, res.Current, res.VotePower = block, current, utils.Amount(power)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (v *Votes) handleGetCheckpoints(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var cps []*checkpoints.Checkpoint
	if err := v.view(func() (err error) {
		cps, err = v.engine.Checkpoints(addr)
		return err
	}); err != nil {
		return err
	}
	res := make([]*Checkpoint, 0, len(cps))
	for _, cp := range cps {
		res = append(res, &Checkpoint{Block: cp.Block, Weight: utils.Amount(cp.Weight)})
	}
	return utils.WriteJSON(w, res)
}

func (v *Votes) handleGetHint(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	// index of the last checkpoint at or before block
	idx := -1
	if err := v.view(func() error {
		block, err := utils.ParseBlock("block", req.URL.Query().Get("block"), v.head())
		if err != nil {
			return err
		}
		cps, err := v.engine.Checkpoints(addr)
		if err != nil {
			return err
		}
		for i, cp := range cps {
			if cp.Block > block {
				break
			}
			idx = i
		}
		return nil
	}); err != nil {
		return err
	}
	if idx < 0 {
		return utils.WriteJSON(w, utils.M{"hint": nil})
	}
	return utils.WriteJSON(w, utils.M{"hint": hexutil.Bytes(checkpoints.EncodeHint(uint32(idx)))})
}

func (v *Votes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /votes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetVotePower))
	sub.Path("/{address}/checkpoints").
		Methods(http.MethodGet).
		Name("GET /votes/{address}/checkpoints").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetCheckpoints))
	sub.Path("/{address}/hint").
		Methods(http.MethodGet).
		Name("GET /votes/{address}/hint").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetHint))
}
