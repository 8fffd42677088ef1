// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"sort"
	"sync"
)

// CacheKV 在 DB 之上缓存一组写操作, Commit 时作为一个 batch 原子写入
type CacheKV struct {
	parent DB
	mu     sync.RWMutex
	// value 为 nil 表示已删除
	cache map[string][]byte
}

//NewCacheKV new
func NewCacheKV(parent DB) *CacheKV {
	return &CacheKV{parent: parent, cache: make(map[string][]byte)}
}

//Get 先读缓存, 再读底层 DB
func (c *CacheKV) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	value, ok := c.cache[string(key)]
	c.mu.RUnlock()
	if ok {
		if value == nil {
			return nil, ErrNotFoundInDb
		}
		return CopyBytes(value), nil
	}
	return c.parent.Get(key)
}

//Set set
func (c *CacheKV) Set(key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	c.mu.Lock()
	c.cache[string(key)] = CopyBytes(value)
	c.mu.Unlock()
	return nil
}

//Delete 删除
func (c *CacheKV) Delete(key []byte) error {
	c.mu.Lock()
	c.cache[string(key)] = nil
	c.mu.Unlock()
	return nil
}

//Len 缓存中的 key 数目
func (c *CacheKV) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

//Commit 写入底层 DB, 失败时缓存保持不变
func (c *CacheKV) Commit(sync bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.cache))
	for k := range c.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	batch := c.parent.NewBatch(sync)
	for _, k := range keys {
		if v := c.cache[k]; v == nil {
			batch.Delete([]byte(k))
		} else {
			batch.Set([]byte(k), v)
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	c.cache = make(map[string][]byte)
	return nil
}

//Discard 丢弃全部缓存
func (c *CacheKV) Discard() {
	c.mu.Lock()
	c.cache = make(map[string][]byte)
	c.mu.Unlock()
}
