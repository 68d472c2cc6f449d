// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/reverts"
	"github.com/vestry-labs/vestry/builtin/slots"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

var (
	slotCheckpointCounts = vestry.BytesToBytes32([]byte("checkpoint-counts"))
	slotCheckpoints      = vestry.BytesToBytes32([]byte("checkpoints"))

	ErrStale              = reverts.New("checkpoints: query block is within the staleness window")
	ErrOutOfOrder         = reverts.New("checkpoints: block is older than the latest checkpoint")
	ErrInsufficientWeight = reverts.New("checkpoints: insufficient weight")
	ErrInvalidWeight      = reverts.New("checkpoints: invalid weight")
)

// Ledger is an append-only per-account log of voting weight over blocks.
type Ledger struct {
	state         *state.State
	counts        *slots.Mapping[vestry.Address, uint32]
	entries       *slots.Mapping[entryKey, *Checkpoint]
	staleBlockLag uint32
}

// New creates a ledger whose queries must trail the head by staleBlockLag blocks.
func New(sctx *slots.Context, staleBlockLag uint32) *Ledger {
	return &Ledger{
		state:         sctx.State(),
		counts:        slots.NewMapping[vestry.Address, uint32](sctx, slotCheckpointCounts),
		entries:       slots.NewMapping[entryKey, *Checkpoint](sctx, slotCheckpoints),
		staleBlockLag: staleBlockLag,
	}
}

// StaleBlockLag returns the staleness window in blocks.
func (l *Ledger) StaleBlockLag() uint32 {
	return l.staleBlockLag
}

// Len returns the number of checkpoints of account.
func (l *Ledger) Len(account vestry.Address) (uint32, error) {
	return l.counts.Get(account)
}

// At returns the i-th checkpoint of account.
func (l *Ledger) At(account vestry.Address, i uint32) (*Checkpoint, error) {
	cp, err := l.entries.Get(entryKey{account, i})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	if cp.Weight == nil {
		cp.Weight = new(big.Int)
	}
	return cp, nil
}

// LoadTop returns the latest weight of account.
func (l *Ledger) LoadTop(account vestry.Address) (*big.Int, error) {
	n, err := l.Len(account)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(big.Int), nil
	}
	cp, err := l.At(account, n-1)
	if err != nil {
		return nil, err
	}
	return cp.Weight, nil
}

// Push records weight as the value of account from block on and returns the
// previous latest weight. Pushing twice in a block overwrites the entry.
func (l *Ledger) Push(account vestry.Address, weight *big.Int, block uint32) (*big.Int, error) {
	if weight == nil || weight.Sign() < 0 {
		return nil, ErrInvalidWeight
	}
	n, err := l.Len(account)
	if err != nil {
		return nil, err
	}
	prev := new(big.Int)
	index := n
	if n > 0 {
		top, err := l.At(account, n-1)
		if err != nil {
			return nil, err
		}
		if block < top.Block {
			return nil, ErrOutOfOrder
		}
		prev = top.Weight
		if block == top.Block {
			index = n - 1
		}
	}
	if err := l.entries.Set(entryKey{account, index}, &Checkpoint{Block: block, Weight: new(big.Int).Set(weight)}); err != nil {
		return nil, errors.Wrap(err, "failed to set checkpoint")
	}
	if index == n {
		if err := l.counts.Set(account, n+1); err != nil {
			return nil, err
		}
	}
	return prev, nil
}

// IsStale reports whether block is too recent to be read at current.
func (l *Ledger) IsStale(block, current uint32) bool {
	return uint64(block)+uint64(l.staleBlockLag) > uint64(current)
}

// QueryAsOf returns the weight of account at block, as seen from current.
// hint, when it is a 4-byte big-endian checkpoint index, is tried before searching.
func (l *Ledger) QueryAsOf(account vestry.Address, block, current uint32, hint []byte) (*big.Int, error) {
	if l.IsStale(block, current) {
		return nil, ErrStale
	}
	if len(hint) == 4 {
		if w, ok, err := l.tryHint(account, block, binary.BigEndian.Uint32(hint)); err != nil {
			return nil, err
		} else if ok {
			return w, nil
		}
	}
	return l.QueryAsOfView(account, block)
}

func (l *Ledger) tryHint(account vestry.Address, block, index uint32) (*big.Int, bool, error) {
	n, err := l.Len(account)
	if err != nil {
		return nil, false, err
	}
	if index >= n {
		return nil, false, nil
	}
	cp, err := l.At(account, index)
	if err != nil {
		return nil, false, err
	}
	if cp.Block > block {
		return nil, false, nil
	}
	if index+1 < n {
		next, err := l.At(account, index+1)
		if err != nil {
			return nil, false, err
		}
		if next.Block <= block {
			return nil, false, nil
		}
	}
	return cp.Weight, true, nil
}

// QueryAsOfView returns the weight of account at block without the staleness check.
func (l *Ledger) QueryAsOfView(account vestry.Address, block uint32) (*big.Int, error) {
	n, err := l.Len(account)
	if err != nil {
		return nil, err
	}
	// find the last checkpoint at or before block
	lo, hi := uint32(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		cp, err := l.At(account, mid)
		if err != nil {
			return nil, err
		}
		if cp.Block <= block {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return new(big.Int), nil
	}
	cp, err := l.At(account, lo-1)
	if err != nil {
		return nil, err
	}
	return cp.Weight, nil
}

// Add credits amount to the weight of to, moved from from.
func (l *Ledger) Add(from, to vestry.Address, amount *big.Int, block uint32) (*VoteChange, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidWeight
	}
	top, err := l.LoadTop(to)
	if err != nil {
		return nil, err
	}
	if _, err := l.Push(to, new(big.Int).Add(top, amount), block); err != nil {
		return nil, err
	}
	return &VoteChange{
		From:      from,
		To:        to,
		Delegatee: to,
		Delta:     new(big.Int).Set(amount),
		Block:     block,
	}, nil
}

// Sub debits amount from the weight of from, moved to to.
func (l *Ledger) Sub(from, to vestry.Address, amount *big.Int, block uint32) (*VoteChange, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidWeight
	}
	top, err := l.LoadTop(from)
	if err != nil {
		return nil, err
	}
	if top.Cmp(amount) < 0 {
		return nil, ErrInsufficientWeight
	}
	if _, err := l.Push(from, new(big.Int).Sub(top, amount), block); err != nil {
		return nil, err
	}
	return &VoteChange{
		From:      from,
		To:        to,
		Delegatee: from,
		Delta:     new(big.Int).Neg(amount),
		Block:     block,
	}, nil
}

// Move transfers amount of weight from one delegatee to another.
// Either both checkpoints are written or neither is.
func (l *Ledger) Move(from, to vestry.Address, amount *big.Int, block uint32) ([]*VoteChange, error) {
	rev := l.state.NewCheckpoint()
	sub, err := l.Sub(from, to, amount, block)
	if err != nil {
		l.state.RevertTo(rev)
		return nil, err
	}
	add, err := l.Add(from, to, amount, block)
	if err != nil {
		l.state.RevertTo(rev)
		return nil, err
	}
	return []*VoteChange{sub, add}, nil
}
