// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor 对局的权威账本: 保存对局, 串行执行状态转换, 与资金变动一起原子提交
package executor

import (
	"sync"
	"time"

	"github.com/33cn/rpsls/account"
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/game"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var elog = log.New("module", "execs")

const lockStripes = 64

// Executor owns every session
type Executor struct {
	db     dbm.DB
	cache  *lru.Cache
	window time.Duration
	now    func() time.Time

	// mu 保护账户和 nonce 等共享状态
	mu    sync.Mutex
	locks [lockStripes]sync.Mutex
}

// Option configures an Executor
type Option func(*Executor)

// WithClock replaces types.Now as the authoritative clock
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// WithWindow sets the timeout window of new sessions
func WithWindow(window time.Duration) Option {
	return func(e *Executor) {
		if window > 0 {
			e.window = window
		}
	}
}

// WithCacheSize sets how many sessions stay decoded in memory
func WithCacheSize(size int) Option {
	return func(e *Executor) {
		if size > 0 {
			e.cache, _ = lru.New(size)
		}
	}
}

// New executor over db
func New(db dbm.DB, opts ...Option) *Executor {
	cache, _ := lru.New(types.DefaultSessionCache)
	e := &Executor{
		db:     db,
		cache:  cache,
		window: game.DefaultWindow,
		now:    types.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig opens the ledger database described by cfg and applies the genesis allocations
func NewFromConfig(cfg *types.Config) (*Executor, error) {
	db, err := dbm.NewDB("ledger", cfg.Store.Driver, cfg.Store.DbPath, cfg.Store.DbCache)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s db at %s", cfg.Store.Driver, cfg.Store.DbPath)
	}
	e := New(db, WithWindow(cfg.Game.Window()), WithCacheSize(cfg.Store.SessionCache))
	if err := e.Genesis(cfg.Genesis); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

// Genesis credits allocs once, on an empty ledger
func (e *Executor) Genesis(allocs []*types.GenesisAlloc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cache := dbm.NewCacheKV(e.db)
	done, err := account.NewAccountDB(types.ExecName, cache).GenesisInit(allocs)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	elog.Info("Genesis", "allocs", len(allocs))
	return cache.Commit(true)
}

// Window of new sessions
func (e *Executor) Window() time.Duration {
	return e.window
}

// ExecAddr 资金池地址
func (e *Executor) ExecAddr() common.Address {
	return account.ExecAddress(types.ExecName)
}

// Close the database
func (e *Executor) Close() {
	e.db.Close()
}

func (e *Executor) lockFor(id common.Address) *sync.Mutex {
	return &e.locks[int(id[common.AddressLength-1])%lockStripes]
}
