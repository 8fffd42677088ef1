// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"context"

	"github.com/33cn/rpsls/account"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Session returns a copy of session id
func (e *Executor) Session(ctx context.Context, id common.Address) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.load(id)
}

// ListSessions returns every session addr created, joined or was invited to
func (e *Executor) ListSessions(ctx context.Context, addr common.Address) ([]*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := e.db.PrefixScan(calcPlayerPrefix(addr))
	if err != nil {
		return nil, errors.Wrap(types.ErrInternal, err.Error())
	}
	sessions := make([]*types.Session, 0, len(ids))
	for _, id := range ids {
		s, err := e.load(common.BytesToAddress(id))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Balance of addr
func (e *Executor) Balance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return account.NewAccountDB(types.ExecName, e.db).Balance(addr)
}

// Nonce number of sessions addr created
func (e *Executor) Nonce(addr common.Address) (uint64, error) {
	return getNonce(e.db, addr)
}
