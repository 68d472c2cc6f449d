// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/vestry-labs/vestry/builtin/migrator"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/vestry"
)

// Recorder buffers the events of the engine until written to a log db.
type Recorder struct {
	mu     sync.Mutex
	events []migrator.Event
}

// NewRecorder subscribes a recorder to the engine.
func (rt *Runtime) NewRecorder() *Recorder {
	r := &Recorder{}
	rt.engine.OnEvent(r.add)
	return r
}

func (r *Recorder) add(ev migrator.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset drops the buffered events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Write stores the buffered events, one batch per block, and clears the
// buffer. The buffer is cleared on failure too, so batches already written
// are never stored twice.
func (r *Recorder) Write(db *logdb.LogDB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.events = nil }()

	var batch *logdb.Batch
	for _, ev := range r.events {
		if batch == nil || batch.BlockNumber() != ev.BlockNumber() {
			if batch != nil {
				if err := batch.Commit(); err != nil {
					return err
				}
			}
			batch = db.NewBatch(ev.BlockNumber())
		}
		switch ev := ev.(type) {
		case *migrator.VoteChanged:
			batch.AddVoteChange(ev.From, ev.To, ev.Delegatee, ev.Delta)
		case *migrator.GrantCreated:
			batch.AddGrantEvent(logdb.GrantCreated, ev.Recipient, ev.Caller, ev.Amount, ev.Allocation)
		case *migrator.GrantClaimed:
			batch.AddGrantEvent(logdb.GrantClaimed, ev.Recipient, vestry.Address{}, ev.Withdrawn, ev.Returned)
		case *migrator.GrantDelegated:
			batch.AddGrantEvent(logdb.GrantDelegated, ev.Recipient, ev.To, nil, nil)
		}
	}
	if batch != nil {
		return batch.Commit()
	}
	return nil
}
