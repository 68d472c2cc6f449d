// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int32
	)
	for i := 0; i < 10; i++ {
		goes.Go(func() { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestSignal(t *testing.T) {
	var sig Signal

	c1 := sig.C()
	c2 := sig.C()
	select {
	case <-c1:
		t.Fatal("closed before broadcast")
	default:
	}

	var goes Goes
	var woken atomic.Int32
	for _, c := range []<-chan struct{}{c1, c2} {
		c := c
		goes.Go(func() {
			select {
			case <-c:
				woken.Add(1)
			case <-time.After(time.Second):
			}
		})
	}
	sig.Broadcast()
	goes.Wait()
	assert.Equal(t, int32(2), woken.Load())

	// a new channel waits for the next broadcast
	select {
	case <-sig.C():
		t.Fatal("stale broadcast")
	default:
	}

	// broadcasting without waiters is harmless
	var idle Signal
	idle.Broadcast()
}
