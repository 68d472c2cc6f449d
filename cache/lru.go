// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides a typed LRU over golang-lru with hit and miss stats.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a fixed size cache of values of type V keyed by K.
type LRU[K comparable, V any] struct {
	c     *lru.Cache
	stats Stats
}

// NewLRU creates an LRU holding up to size entries. size must be positive.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.c.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

func (l *LRU[K, V]) Contains(key K) bool {
	return l.c.Contains(key)
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// GetOrLoad returns the cached value of key, loading and caching it on a miss.
// Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		l.stats.Hit()
		return v, nil
	}
	l.stats.Miss()
	v, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	l.c.Add(key, v)
	return v, nil
}

// Stats returns the hit and miss counters of GetOrLoad.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}

// Stats collects cache hits and misses.
type Stats struct {
	hit, miss atomic.Int64
	rate      atomic.Int32
}

func (s *Stats) Hit() int64  { return s.hit.Add(1) }
func (s *Stats) Miss() int64 { return s.miss.Add(1) }

// HitRate returns the hit rate in permille and whether it changed since the
// previous call.
func (s *Stats) HitRate() (int32, bool) {
	hit, miss := s.hit.Load(), s.miss.Load()
	var rate int32
	if hit+miss > 0 {
		rate = int32(hit * 1000 / (hit + miss))
	}
	return rate, s.rate.Swap(rate) != rate
}
