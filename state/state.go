// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vestry-labs/vestry/cache"
	"github.com/vestry-labs/vestry/kv"
	"github.com/vestry-labs/vestry/stackedmap"
	"github.com/vestry-labs/vestry/vestry"
)

// storageBucket prefixes every committed storage slot in the kv store.
const storageBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr vestry.Address
	key  vestry.Bytes32
}

func (k storageKey) encode() []byte {
	return append(append(make([]byte, 0, 52), k.addr[:]...), k.key[:]...)
}

// State manages the storage slots of every builtin ledger.
// Changes are kept in memory, journaled, until staged and committed.
type State struct {
	db    kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue]             // committed slots
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue] // keeps revisions of storage
}

// New create state object backed by the given kv store.
func New(db kv.Store) *State {
	c, _ := cache.NewLRU[storageKey, rlp.RawValue](4096)
	s := &State{
		db:    db,
		cache: c,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(storageKey) (rlp.RawValue, error) {
		metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read"})
		data, err := storageBucket.Get(s.db, key.encode())
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr vestry.Address, key vestry.Bytes32) (vestry.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return vestry.Bytes32{}, err
	}
	if len(raw) == 0 {
		return vestry.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return vestry.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return vestry.Blake2b(raw), nil
	}
	return vestry.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr vestry.Address, key, value vestry.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr vestry.Address, key vestry.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. Empty raw clears the slot.
func (s *State) SetRawStorage(addr vestry.Address, key vestry.Bytes32, raw rlp.RawValue) {
	metricStorageCounter().AddWithLabel(1, map[string]string{"type": "write"})
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr vestry.Address, key vestry.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr vestry.Address, key vestry.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	// the bottom level is never popped
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage makes a stage object to commit all changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	// later puts win
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{
		state:   s,
		changes: changes,
	}
}
