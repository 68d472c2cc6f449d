// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vestry-labs/vestry/kv"
	"github.com/vestry-labs/vestry/stackedmap"
	"github.com/vestry-labs/vestry/vestry"
)

// Stage abstracts changes on the storage slots.
type Stage struct {
	state   *State
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of all staged changes, in key order.
func (s *Stage) Hash() vestry.Bytes32 {
	keys := make([][]byte, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k.encode())
	}
	slices.SortFunc(keys, bytes.Compare)

	var buf []byte
	for _, k := range keys {
		var sk storageKey
		copy(sk.addr[:], k[:20])
		copy(sk.key[:], k[20:])
		buf = append(buf, k...)
		buf = append(buf, s.changes[sk]...)
	}
	return vestry.Blake2b(buf)
}

// Commit writes all changes into the underlying store atomically. Each extra
// writes more keys into the same batch.
func (s *Stage) Commit(extras ...func(kv.Putter) error) error {
	batch := s.state.db.NewBatch()
	for _, extra := range extras {
		if err := extra(batch); err != nil {
			return &Error{err}
		}
	}
	for k, v := range s.changes {
		if len(v) == 0 {
			if err := storageBucket.Delete(batch, k.encode()); err != nil {
				return &Error{err}
			}
		} else {
			if err := storageBucket.Put(batch, k.encode(), v); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	for k, v := range s.changes {
		s.state.cache.Add(k, v)
	}
	// committed changes now come from the store
	s.state.sm = stackedmap.New(s.state.cacheGetter)
	metricStorageCounter().AddWithLabel(int64(len(s.changes)), map[string]string{"type": "commit"})
	if rate, changed := s.state.cache.Stats().HitRate(); changed {
		metricCacheHitRate().Set(int64(rate))
	}
	return nil
}
