// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/migrator"
	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/config"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/state"
)

const (
	SourceToken = "source"
	TargetToken = "target"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime binds the builtin ledgers and the migration engine described by a
// config to one state.
type Runtime struct {
	cfg    *config.Config
	state  *state.State
	source *token.Token
	target *token.Token
	engine *migrator.Engine
}

// New create a runtime over st.
func New(st *state.State, cfg *config.Config) (*Runtime, error) {
	policy, err := cfg.MigrationPolicy()
	if err != nil {
		return nil, err
	}
	source := token.New(cfg.Source, SourceToken, st)
	target := token.New(cfg.Target, TargetToken, st)
	engine := migrator.New(cfg.Engine, st, migrator.Options{
		Policy:          policy,
		Source:          source,
		Target:          target,
		Treasury:        cfg.Treasury,
		StalenessWindow: cfg.StalenessWindow,
	})
	return &Runtime{
		cfg:    cfg,
		state:  st,
		source: source,
		target: target,
		engine: engine,
	}, nil
}

func (rt *Runtime) Config() *config.Config { return rt.cfg }
func (rt *Runtime) State() *state.State { return rt.state }
func (rt *Runtime) Source() *token.Token { return rt.source }
func (rt *Runtime) Target() *token.Token { return rt.target }
func (rt *Runtime) Engine() *migrator.Engine { return rt.engine }

// Token returns the ledger called name.
func (rt *Runtime) Token(name string) (*token.Token, error) {
	switch name {
	case SourceToken:
		return rt.source, nil
	case TargetToken:
		return rt.target, nil
	default:
		return nil, fmt.Errorf("unknown token %q, want %s or %s", name, SourceToken, TargetToken)
	}
}

// Genesis writes the initial state: the admin holds the mint role of both
// ledgers and, for a pooled policy, the unassigned pool is set.
func (rt *Runtime) Genesis() error {
	for _, t := range []*token.Token{rt.source, rt.target} {
		if err := t.SetMinter(rt.cfg.Admin, true); err != nil {
			return errors.WithMessagef(err, "set minter of %s", t.Name())
		}
	}
	if rt.engine.Policy().UsesPool() && rt.cfg.Flat.Unassigned != nil {
		if err := rt.engine.SetUnassigned(rt.cfg.Flat.Unassigned.Int()); err != nil {
			return errors.WithMessage(err, "set unassigned pool")
		}
	}
	logger.Info("genesis written", "policy", rt.engine.Policy().Name(), "admin", rt.cfg.Admin)
	return nil
}
