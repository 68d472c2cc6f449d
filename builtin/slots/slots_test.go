// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/lvldb"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/test/datagen"
	"github.com/vestry-labs/vestry/vestry"
)

type TestStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr1  vestry.Address
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(vestry.Address{1}, state.New(db))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	mapping := NewMapping[vestry.Address, *TestStruct](ctx, vestry.Bytes32{1})

	key := datagen.RandAddress()

	// absent key yields an allocated zero value
	v, err := mapping.Get(key)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Nil(t, v.Amount)
	has, err := mapping.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	value := &TestStruct{Field1: 100, Amount: big.NewInt(200), Addr1: datagen.RandAddress()}
	require.NoError(t, mapping.Set(key, value))

	got, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	has, err = mapping.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	// the same key under another base position is a distinct slot
	other := NewMapping[vestry.Address, *TestStruct](ctx, vestry.Bytes32{2})
	has, err = other.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	mapping.Delete(key)
	has, err = mapping.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMapping_ValueTypes(t *testing.T) {
	ctx := newTestContext(t)
	counts := NewMapping[vestry.Address, uint32](ctx, vestry.Bytes32{3})

	key := datagen.RandAddress()
	n, err := counts.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)

	require.NoError(t, counts.Set(key, 42))
	n, err = counts.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), n)
}

func TestMapping_DecodeError(t *testing.T) {
	ctx := newTestContext(t)
	mapping := NewMapping[vestry.Address, *TestStruct](ctx, vestry.Bytes32{1})
	key := datagen.RandAddress()

	ctx.State().SetRawStorage(ctx.Address(), mapping.position(key), rlp.RawValue{0xFF})
	_, err := mapping.Get(key)
	assert.Error(t, err)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, vestry.Bytes32{4})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Set(big.NewInt(10)))
	require.NoError(t, u.Add(big.NewInt(5)))
	require.NoError(t, u.Sub(big.NewInt(3)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(12), v)

	assert.ErrorIs(t, u.Sub(big.NewInt(13)), errUnderflow)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(12), v, "failed sub leaves the value untouched")
}

func TestUint256Bounds(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, vestry.Bytes32{5})

	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(limit))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), errOverflow)
	assert.ErrorIs(t, u.Set(big.NewInt(-1)), errUnderflow)

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, limit, v)
}
