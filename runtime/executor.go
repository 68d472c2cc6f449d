// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/chain"
	"github.com/vestry-labs/vestry/co"
	"github.com/vestry-labs/vestry/logdb"
)

// Executor runs state changes one at a time, each committed at a block
// together with the logs of its events. A failed change leaves nothing behind.
// Reads of the runtime go through View, so they never observe a change in
// flight.
//
// It's thread-safe.
type Executor struct {
	mu    sync.RWMutex
	rt    *Runtime
	repo  *chain.Repository
	logDB *logdb.LogDB // optional
	rec   *Recorder
	tick  co.Signal
}

func NewExecutor(rt *Runtime, repo *chain.Repository, logDB *logdb.LogDB) *Executor {
	return &Executor{
		rt:    rt,
		repo:  repo,
		logDB: logDB,
		rec:   rt.NewRecorder(),
	}
}

func (x *Executor) Runtime() *Runtime { return x.rt }
func (x *Executor) Head() uint32      { return x.repo.Head() }

// Ticked returns a channel closed once the next change and its logs are written.
func (x *Executor) Ticked() <-chan struct{} {
	return x.tick.C()
}

// View calls fn with the runtime frozen at the head. Views run concurrently
// with each other, never with a change.
func (x *Executor) View(fn func() error) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return fn()
}

// Run calls fn and commits its changes at block.
func (x *Executor) Run(block uint32, fn func() error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.run(block, fn)
}

// Execute applies op, at the block after the head when op has none, and
// returns the block it was committed at.
func (x *Executor) Execute(op *Op) (uint32, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	block := op.Block
	if block == 0 {
		block = x.repo.NextBlock()
	}
	return block, x.run(block, func() error {
		return x.rt.Apply(op, block)
	})
}

func (x *Executor) run(block uint32, fn func() error) error {
	if head := x.repo.Head(); x.repo.Initialized() && block < head {
		return errors.WithMessagef(chain.ErrBlockTooOld, "block %d, head %d", block, head)
	}

	st := x.rt.State()
	rev := st.NewCheckpoint()
	if err := fn(); err != nil {
		st.RevertTo(rev)
		x.rec.Reset()
		return err
	}
	if err := x.repo.Commit(st.Stage(), block); err != nil {
		st.RevertTo(rev)
		x.rec.Reset()
		return err
	}
	// the change is committed from here on, a log failure must not report it failed
	if x.logDB == nil {
		x.rec.Reset()
	} else if err := x.rec.Write(x.logDB); err != nil {
		logger.Warn("logs of a committed block are lost", "block", block, "err", err)
	}
	x.tick.Broadcast()
	return nil
}
