// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackend(t *testing.T, backend string) {
	dir, err := os.MkdirTemp("", "rpslsdb")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	d, err := NewDB("test", backend, dir, 16)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Get([]byte("missing"))
	assert.Equal(t, ErrNotFoundInDb, err)

	require.NoError(t, d.Set([]byte("aaa"), []byte("1")))
	require.NoError(t, d.SetSync([]byte("aab"), []byte("2")))
	require.NoError(t, d.Set([]byte("b"), []byte("3")))
	v, err := d.Get([]byte("aab"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	values, err := d.PrefixScan([]byte("aa"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("2")}, values)

	batch := d.NewBatch(true)
	batch.Set([]byte("ac"), []byte("4"))
	batch.Delete([]byte("aaa"))
	assert.Equal(t, 2, batch.ValueSize())
	require.NoError(t, batch.Write())

	_, err = d.Get([]byte("aaa"))
	assert.Equal(t, ErrNotFoundInDb, err)
	values, err = d.PrefixScan([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("2"), []byte("4")}, values)

	require.NoError(t, d.Delete([]byte("b")))
	_, err = d.Get([]byte("b"))
	assert.Equal(t, ErrNotFoundInDb, err)
}

func TestBackends(t *testing.T) {
	for _, backend := range []string{GoLevelDBBackendStr, GoBadgerDBBackendStr, MemDBBackendStr} {
		t.Run(backend, func(t *testing.T) {
			testBackend(t, backend)
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := NewDB("test", "nosuchdb", "", 0)
	assert.Error(t, err)
}

func TestCacheKV(t *testing.T) {
	parent, _ := NewGoMemDB("test", "", 0)
	require.NoError(t, parent.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, parent.Set([]byte("k2"), []byte("v2")))

	c := NewCacheKV(parent)
	require.NoError(t, c.Set([]byte("k1"), []byte("new")))
	require.NoError(t, c.Delete([]byte("k2")))
	require.NoError(t, c.Set([]byte("k3"), nil))

	v, err := c.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
	_, err = c.Get([]byte("k2"))
	assert.Equal(t, ErrNotFoundInDb, err)
	v, err = c.Get([]byte("k3"))
	require.NoError(t, err)
	assert.Equal(t, []byte{}, v)

	// 提交前底层不变
	v, _ = parent.Get([]byte("k1"))
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, c.Commit(false))
	assert.Equal(t, 0, c.Len())
	v, _ = parent.Get([]byte("k1"))
	assert.Equal(t, []byte("new"), v)
	_, err = parent.Get([]byte("k2"))
	assert.Equal(t, ErrNotFoundInDb, err)
}

func TestCacheKVDiscard(t *testing.T) {
	parent, _ := NewGoMemDB("test", "", 0)
	c := NewCacheKV(parent)
	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	c.Discard()
	require.NoError(t, c.Commit(true))
	_, err := parent.Get([]byte("k"))
	assert.Equal(t, ErrNotFoundInDb, err)
}

func TestStorageErrors(t *testing.T) {
	full := &os.PathError{Op: "write", Path: "x", Err: syscall.ENOSPC}
	assert.True(t, IsStorageFull(fmt.Errorf("put: %w", full)))
	assert.False(t, IsPermission(full))
	denied := &os.PathError{Op: "open", Path: "x", Err: syscall.EACCES}
	assert.True(t, IsPermission(denied))
	assert.False(t, IsStorageFull(denied))
}
