// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/kv"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/state"
)

const propStoreName = kv.Bucket("chain.props") // for properties such as the head block

var (
	headKey = []byte("head")

	logger = log.WithContext("pkg", "chain")
)

// ErrBlockTooOld is returned when committing below the head block.
var ErrBlockTooOld = errors.New("block is older than head")

// Repository keeps the head block: the number of the latest block whose
// state changes are committed. Block numbers are the time axis of the engine.
//
// It's thread-safe.
type Repository struct {
	db   kv.Store
	mu   sync.RWMutex
	head uint32
	init bool
}

// NewRepository loads the head from db. A fresh db has no head.
func NewRepository(db kv.Store) (*Repository, error) {
	repo := &Repository{db: db}

	val, err := propStoreName.Get(db, headKey)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, errors.Wrap(err, "get head")
		}
		return repo, nil
	}
	if len(val) != 4 {
		return nil, errors.New("corrupted head")
	}
	repo.head = binary.BigEndian.Uint32(val)
	repo.init = true
	return repo, nil
}

// Head returns the head block number, 0 before the first commit.
func (r *Repository) Head() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.head
}

// Initialized reports whether anything was committed yet.
func (r *Repository) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.init
}

// NextBlock returns the default block of the next operation.
func (r *Repository) NextBlock() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.init {
		return 0
	}
	return r.head + 1
}

// Commit writes the stage and moves the head to block in one batch.
// Several commits may share a block, but never go below the head.
func (r *Repository) Commit(stage *state.Stage, block uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.init && block < r.head {
		return errors.WithMessagef(ErrBlockTooOld, "block %d, head %d", block, r.head)
	}

	var val [4]byte
	binary.BigEndian.PutUint32(val[:], block)
	if err := stage.Commit(func(p kv.Putter) error {
		return propStoreName.Put(p, headKey, val[:])
	}); err != nil {
		return errors.Wrap(err, "commit")
	}

	r.head = block
	r.init = true
	logger.Debug("head updated", "head", block, "slots", stage.Len())
	metricHead().Set(int64(block))
	return nil
}
