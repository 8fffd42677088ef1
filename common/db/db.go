// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrNotFoundInDb key 不存在
var ErrNotFoundInDb = errors.New("ErrNotFoundInDb")

// KV the read/write surface shared by databases and cache overlays
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
}

// DB a key value database backend
type DB interface {
	KV
	SetSync(key []byte, value []byte) error
	NewBatch(sync bool) Batch
	// PrefixScan returns the values of every key starting with prefix, in key order
	PrefixScan(prefix []byte) ([][]byte, error)
	Close()
}

// Batch groups writes that are applied together
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Write() error
	ValueSize() int
}

//-----------------------------------------------------------------------------

// backends
const (
	LevelDBBackendStr    = "leveldb" // legacy, defaults to goleveldb.
	GoLevelDBBackendStr  = "goleveldb"
	MemDBBackendStr      = "memdb"
	GoBadgerDBBackendStr = "gobadgerdb"
)

type dbCreator func(name string, dir string, cache int32) (DB, error)

var backends = map[string]dbCreator{}

func registerDBCreator(backend string, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

// NewDB opens name under dir with the given backend
func NewDB(name string, backend string, dir string, cache int32) (DB, error) {
	dbCreator, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("unknown db backend: %v", backend)
	}
	return dbCreator(name, dir, cache)
}

// IsStorageFull reports whether err came from a full device
func IsStorageFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}

// IsPermission reports whether err came from a denied file operation
func IsPermission(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EROFS)
}

// CopyBytes copy bytes
func CopyBytes(b []byte) (copiedBytes []byte) {
	if b == nil {
		return nil
	}
	copiedBytes = make([]byte, len(b))
	copy(copiedBytes, b)
	return copiedBytes
}
