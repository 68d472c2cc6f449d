// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/builtin/slots"
	"github.com/vestry-labs/vestry/lvldb"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/test/datagen"
	"github.com/vestry-labs/vestry/vestry"
)

func newTestLedger(t *testing.T, lag uint32) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(slots.NewContext(vestry.BytesToAddress([]byte("votes")), state.New(db)), lag)
}

func queryView(t *testing.T, l *Ledger, account vestry.Address, block uint32) *big.Int {
	w, err := l.QueryAsOfView(account, block)
	require.NoError(t, err)
	return w
}

func TestPush(t *testing.T) {
	l := newTestLedger(t, 0)
	alice := datagen.RandAddress()

	top, err := l.LoadTop(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Sign())

	prev, err := l.Push(alice, big.NewInt(10), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, prev.Sign())

	prev, err = l.Push(alice, big.NewInt(20), 8)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), prev)

	// same block overwrites
	prev, err = l.Push(alice, big.NewInt(25), 8)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), prev)
	n, err := l.Len(alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	_, err = l.Push(alice, big.NewInt(1), 7)
	assert.ErrorIs(t, err, ErrOutOfOrder)

	_, err = l.Push(alice, big.NewInt(-1), 9)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	cp, err := l.At(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), cp.Block)
	assert.Equal(t, big.NewInt(25), cp.Weight)
}

func TestQueryAsOf(t *testing.T) {
	l := newTestLedger(t, 20)
	alice := datagen.RandAddress()

	for i, block := range []uint32{10, 20, 30, 40} {
		_, err := l.Push(alice, big.NewInt(int64(i+1)*100), block)
		require.NoError(t, err)
	}

	tests := []struct {
		block uint32
		want  int64
	}{
		{0, 0}, {9, 0}, {10, 100}, {19, 100}, {20, 200}, {35, 300}, {40, 400}, {1000, 400},
	}
	for _, tt := range tests {
		assert.Equal(t, big.NewInt(tt.want), queryView(t, l, alice, tt.block), "block %d", tt.block)
	}

	// staleness window
	_, err := l.QueryAsOf(alice, 30, 49, nil)
	assert.ErrorIs(t, err, ErrStale)
	_, err = l.QueryAsOf(alice, 60, 50, nil)
	assert.ErrorIs(t, err, ErrStale, "future blocks are always stale")
	w, err := l.QueryAsOf(alice, 30, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), w)

	// unknown account reads zero
	w, err = l.QueryAsOf(datagen.RandAddress(), 30, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Sign())
}

func TestQueryAsOfHint(t *testing.T) {
	l := newTestLedger(t, 0)
	alice := datagen.RandAddress()
	for i, block := range []uint32{10, 20, 30} {
		_, err := l.Push(alice, big.NewInt(int64(i+1)), block)
		require.NoError(t, err)
	}

	for _, hint := range [][]byte{
		EncodeHint(1),  // right
		EncodeHint(0),  // too early
		EncodeHint(2),  // too late
		EncodeHint(99), // out of range
		{0x01},         // malformed
		nil,
	} {
		w, err := l.QueryAsOf(alice, 25, 100, hint)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(2), w, "hint %x", hint)
	}
}

func TestAddSub(t *testing.T) {
	l := newTestLedger(t, 0)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	change, err := l.Add(alice, bob, big.NewInt(50), 1)
	require.NoError(t, err)
	assert.Equal(t, &VoteChange{From: alice, To: bob, Delegatee: bob, Delta: big.NewInt(50), Block: 1}, change)

	_, err = l.Sub(bob, vestry.Address{}, big.NewInt(51), 2)
	assert.ErrorIs(t, err, ErrInsufficientWeight)

	change, err = l.Sub(bob, vestry.Address{}, big.NewInt(20), 2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-20), change.Delta)
	assert.Equal(t, bob, change.Delegatee)
	assert.Equal(t, big.NewInt(30), queryView(t, l, bob, 2))
	assert.Equal(t, big.NewInt(50), queryView(t, l, bob, 1), "history is kept")
}

func TestMove(t *testing.T) {
	l := newTestLedger(t, 0)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	_, err := l.Add(alice, alice, big.NewInt(100), 1)
	require.NoError(t, err)

	changes, err := l.Move(alice, bob, big.NewInt(100), 5)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, big.NewInt(-100), changes[0].Delta)
	assert.Equal(t, big.NewInt(100), changes[1].Delta)
	assert.Equal(t, 0, queryView(t, l, alice, 5).Sign())
	assert.Equal(t, big.NewInt(100), queryView(t, l, bob, 5))

	// the credit side fails: the debit is rolled back too
	_, err = l.Push(alice, big.NewInt(10), 6)
	require.NoError(t, err)
	_, err = l.Push(bob, big.NewInt(100), 9)
	require.NoError(t, err)

	_, err = l.Move(alice, bob, big.NewInt(10), 7)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	top, err := l.LoadTop(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), top)
	n, err := l.Len(alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)
}
