// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/api/utils"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/vestry"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// parseCommon reads the range, order and paging parameters shared by all filters.
func (e *Events) parseCommon(query url.Values) (*logdb.Range, logdb.Order, *logdb.Options, error) {
	var rng *logdb.Range
	if query.Get("from") != "" || query.Get("to") != "" {
		from, err := utils.ParseBlock("from", query.Get("from"), 0)
		if err != nil {
			return nil, "", nil, err
		}
		to, err := utils.ParseBlock("to", query.Get("to"), ^uint32(0))
		if err != nil {
			return nil, "", nil, err
		}
		if from > to {
			return nil, "", nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
		}
		rng = &logdb.Range{From: from, To: to}
	}

	order := logdb.Order(query.Get("order"))
	switch order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, "", nil, utils.BadRequest(fmt.Errorf("order: unknown order %q", order))
	}

	// default limit is one more than allowed, to detect an overflowing result
	opts := &logdb.Options{Limit: e.limit + 1}
	if s := query.Get("offset"); s != "" {
		offset, err := strconv.ParseUint(s, 10, 63)
		if err != nil {
			return nil, "", nil, utils.BadRequest(errors.WithMessage(err, "offset"))
		}
		opts.Offset = offset
	}
	if s := query.Get("limit"); s != "" {
		limit, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, "", nil, utils.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > e.limit {
			return nil, "", nil, utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
		}
		opts.Limit = limit
	}
	return rng, order, opts, nil
}

func (e *Events) parseAccount(query url.Values, name string) (*vestry.Address, error) {
	s := query.Get(name)
	if s == "" {
		return nil, nil
	}
	addr, err := utils.ParseAddress(name, s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (e *Events) checkSize(n int) error {
	if n > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return nil
}

func (e *Events) handleFilterVotes(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	account, err := e.parseAccount(query, "account")
	if err != nil {
		return err
	}
	rng, order, opts, err := e.parseCommon(query)
	if err != nil {
		return err
	}

	changes, err := e.db.FilterVoteChanges(req.Context(), &logdb.VoteFilter{
		Account: account,
		Range:   rng,
		Options: opts,
		Order:   order,
	})
	if err != nil {
		return err
	}
	if err := e.checkSize(len(changes)); err != nil {
		return err
	}

	res := make([]*VoteChange, 0, len(changes))
	for _, c := range changes {
		res = append(res, ConvertVoteChange(c))
	}
	return utils.WriteJSON(w, res)
}

func (e *Events) handleFilterGrants(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	recipient, err := e.parseAccount(query, "recipient")
	if err != nil {
		return err
	}
	kind := logdb.GrantEventKind(query.Get("kind"))
	switch kind {
	case "", logdb.GrantCreated, logdb.GrantClaimed, logdb.GrantDelegated:
	default:
		return utils.BadRequest(fmt.Errorf("kind: unknown kind %q", kind))
	}
	rng, order, opts, err := e.parseCommon(query)
	if err != nil {
		return err
	}

	events, err := e.db.FilterGrantEvents(req.Context(), &logdb.GrantFilter{
		Recipient: recipient,
		Kind:      kind,
		Range:     rng,
		Options:   opts,
		Order:     order,
	})
	if err != nil {
		return err
	}
	if err := e.checkSize(len(events)); err != nil {
		return err
	}

	res := make([]*GrantEvent, 0, len(events))
	for _, ev := range events {
		res = append(res, ConvertGrantEvent(ev))
	}
	return utils.WriteJSON(w, res)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/votes").
		Methods(http.MethodGet).
		Name("GET /logs/votes").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilterVotes))
	sub.Path("/grants").
		Methods(http.MethodGet).
		Name("GET /logs/grants").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilterGrants))
}
