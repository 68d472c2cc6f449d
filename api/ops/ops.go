// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ops

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/chain"
	"github.com/vestry-labs/vestry/runtime"
)

// maximal size of a request body
const maxBodySize = 64 * 1024

type Ops struct {
	x *runtime.Executor
}

// Receipt reports where an operation was committed.
type Receipt struct {
	Block uint32 `json:"block"`
	Head  uint32 `json:"head"`
}

func New(x *runtime.Executor) *Ops {
	return &Ops{x}
}

func (o *Ops) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var op runtime.Op
	decoder := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&op); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := op.Validate(); err != nil {
		return utils.BadRequest(err)
	}

	block, err := o.x.Execute(&op)
	if err != nil {
		if errors.Is(err, chain.ErrBlockTooOld) {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, &Receipt{Block: block, Head: o.x.Head()})
}

func (o *Ops) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /ops").
		HandlerFunc(utils.WrapHandlerFunc(o.handleExecute))
}
