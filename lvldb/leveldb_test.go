// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	disk, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	defer disk.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, ldb := range []*LevelDB{disk, mem} {
		require.NoError(t, ldb.Put(key, value))

		got, err := ldb.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := ldb.Has(key)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = ldb.Has(inValidKey)
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, ldb.Delete(key))
		_, err = ldb.Get(key)
		assert.True(t, ldb.IsNotFound(err))
	}
}

func TestLevelDBBatch(t *testing.T) {
	ldb, err := NewMem()
	require.NoError(t, err)
	defer ldb.Close()

	require.NoError(t, ldb.Put([]byte("gone"), []byte("x")))

	batch := ldb.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, batch.Delete([]byte("gone")))
	assert.Equal(t, 3, batch.Len())

	// nothing visible before write
	has, err := ldb.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, batch.Write())

	v, err := ldb.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
	has, err = ldb.Has([]byte("gone"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lvldb")

	_, err := New(path, Options{ReadOnly: true})
	assert.Error(t, err, "read only never creates")

	ldb, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, ldb.Put([]byte("k"), []byte("v")))
	require.NoError(t, ldb.Close())

	ro, err := New(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer ro.Close()

	v, err := ro.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Error(t, ro.Put([]byte("k"), []byte("w")))

	size, err := ro.Size()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, size, int64(0))
}
