// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"context"
	"time"

	"github.com/33cn/rpsls/account"
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/game"
	"github.com/33cn/rpsls/metrics"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CreateSession opens a session for from, escrowing stake. A zero opponent lets anybody join.
func (e *Executor) CreateSession(ctx context.Context, from common.Address, c types.Commitment,
	stake decimal.Decimal, opponent common.Address) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	defer metrics.Timer("rpsls.exec.create").UpdateSince(time.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	cache := dbm.NewCacheKV(e.db)
	nonce, err := getNonce(cache, from)
	if err != nil {
		return common.Address{}, err
	}
	id := crypto.CreateAddress(from, nonce)
	acc := account.NewAccountDB(types.ExecName, cache)
	g, err := game.Create(id, from, opponent, c, stake, e.window, e.now(), acc)
	if err != nil {
		e.fail("create", from, id, err)
		return common.Address{}, err
	}
	if err := setNonce(cache, from, nonce+1); err != nil {
		return common.Address{}, err
	}
	s := g.State()
	if err := e.commit(cache, s); err != nil {
		return common.Address{}, err
	}
	metrics.Counter("rpsls.session.created").Inc(1)
	elog.Info("CreateSession", "id", id, "player1", from, "stake", stake, "opponent", opponent)
	return id, nil
}

// JoinSession puts from in as player2
func (e *Executor) JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error {
	_, err := e.transition(ctx, "join", from, id, func(g *game.Session, funds game.Funds, now time.Time) error {
		return g.Join(from, move, stake, now, funds)
	})
	return err
}

// RevealSession opens player1's commitment and settles
func (e *Executor) RevealSession(ctx context.Context, from, id common.Address, move types.Move, salt types.Salt) error {
	s, err := e.transition(ctx, "reveal", from, id, func(g *game.Session, funds game.Funds, now time.Time) error {
		return g.Reveal(from, move, salt, now, funds)
	})
	if err == nil {
		metrics.Counter("rpsls.outcome." + s.Outcome.String()).Inc(1)
	}
	return err
}

// ClaimTimeout ends a stalled session
func (e *Executor) ClaimTimeout(ctx context.Context, from, id common.Address) error {
	s, err := e.transition(ctx, "timeout", from, id, func(g *game.Session, funds game.Funds, now time.Time) error {
		return g.ClaimTimeout(from, now, funds)
	})
	if err == nil {
		metrics.Counter("rpsls.outcome." + s.Outcome.String()).Inc(1)
	}
	return err
}

// Deposit credits amount to addr, the faucet of a test network
func (e *Executor) Deposit(ctx context.Context, addr common.Address, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cache := dbm.NewCacheKV(e.db)
	if err := account.NewAccountDB(types.ExecName, cache).Deposit(addr, amount); err != nil {
		return err
	}
	if err := cache.Commit(true); err != nil {
		return errors.Wrap(types.ErrInternal, err.Error())
	}
	elog.Info("Deposit", "addr", addr, "amount", amount)
	return nil
}

type transitionFunc func(g *game.Session, funds game.Funds, now time.Time) error

// transition 在对局锁内执行 fn, 对局状态和资金变动在一个 batch 内提交
func (e *Executor) transition(ctx context.Context, name string, from, id common.Address, fn transitionFunc) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer metrics.Timer("rpsls.exec." + name).UpdateSince(time.Now())

	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := e.load(id)
	if err != nil {
		e.fail(name, from, id, err)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cache := dbm.NewCacheKV(e.db)
	g := game.Load(s)
	if err := fn(g, account.NewAccountDB(types.ExecName, cache), e.now()); err != nil {
		e.fail(name, from, id, err)
		return nil, err
	}
	state := g.State()
	if err := e.commit(cache, state); err != nil {
		return nil, err
	}
	elog.Info("transition", "op", name, "id", id, "from", from, "phase", state.Phase, "outcome", state.Outcome)
	return state, nil
}

func (e *Executor) commit(cache *dbm.CacheKV, s *types.Session) error {
	if err := saveSession(cache, s); err != nil {
		return err
	}
	if err := cache.Commit(true); err != nil {
		elog.Error("commit", "id", s.ID, "err", err)
		e.cache.Remove(s.ID)
		return errors.Wrap(types.ErrInternal, err.Error())
	}
	e.cache.Add(s.ID, s.Clone())
	return nil
}

func (e *Executor) fail(name string, from, id common.Address, err error) {
	metrics.Counter("rpsls.exec." + name + ".fail").Inc(1)
	if types.KindOf(err) == types.KindInternal {
		elog.Error(name, "id", id, "from", from, "err", err)
		return
	}
	elog.Debug(name, "id", id, "from", from, "err", err)
}
