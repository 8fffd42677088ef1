// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	rpctypes "github.com/33cn/rpsls/rpc/types"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Rpsls json rpc service
type Rpsls struct {
	ledger Ledger
	faucet bool
}

// CreateSession Rpsls.CreateSession
func (r *Rpsls) CreateSession(in *rpctypes.ReqCreateSession, result *rpctypes.ReplyCreateSession) error {
	from, err := parseAddr(in.From)
	if err != nil {
		return err
	}
	c, err := types.HexToCommitment(in.Commitment)
	if err != nil {
		return err
	}
	stake, err := parseAmount(in.Stake, types.ErrInvalidStake)
	if err != nil {
		return err
	}
	var opponent common.Address
	if in.Opponent != "" {
		if opponent, err = parseAddr(in.Opponent); err != nil {
			return err
		}
	}
	id, err := r.ledger.CreateSession(context.Background(), from, c, stake, opponent)
	if err != nil {
		return toRPCError("CreateSession", err)
	}
	result.ID = id.Hex()
	return nil
}

// JoinSession Rpsls.JoinSession
func (r *Rpsls) JoinSession(in *rpctypes.ReqJoinSession, result *rpctypes.Reply) error {
	from, id, err := parseFromID(in.From, in.ID)
	if err != nil {
		return err
	}
	move, err := types.ParseMove(in.Move)
	if err != nil {
		return err
	}
	stake, err := parseAmount(in.Stake, types.ErrInvalidStake)
	if err != nil {
		return err
	}
	if err := r.ledger.JoinSession(context.Background(), from, id, move, stake); err != nil {
		return toRPCError("JoinSession", err)
	}
	result.IsOk = true
	return nil
}

// RevealSession Rpsls.RevealSession
func (r *Rpsls) RevealSession(in *rpctypes.ReqRevealSession, result *rpctypes.Reply) error {
	from, id, err := parseFromID(in.From, in.ID)
	if err != nil {
		return err
	}
	move, err := types.ParseMove(in.Move)
	if err != nil {
		return err
	}
	salt, err := types.ParseSalt(in.Salt)
	if err != nil {
		return err
	}
	if err := r.ledger.RevealSession(context.Background(), from, id, move, salt); err != nil {
		return toRPCError("RevealSession", err)
	}
	result.IsOk = true
	return nil
}

// ClaimTimeout Rpsls.ClaimTimeout
func (r *Rpsls) ClaimTimeout(in *rpctypes.ReqClaimTimeout, result *rpctypes.Reply) error {
	from, id, err := parseFromID(in.From, in.ID)
	if err != nil {
		return err
	}
	if err := r.ledger.ClaimTimeout(context.Background(), from, id); err != nil {
		return toRPCError("ClaimTimeout", err)
	}
	result.IsOk = true
	return nil
}

// GetSession Rpsls.GetSession
func (r *Rpsls) GetSession(in *rpctypes.ReqSession, result *types.Session) error {
	id, err := parseAddr(in.ID)
	if err != nil {
		return err
	}
	s, err := r.ledger.Session(context.Background(), id)
	if err != nil {
		return toRPCError("GetSession", err)
	}
	*result = *s
	return nil
}

// ListSessions Rpsls.ListSessions
func (r *Rpsls) ListSessions(in *rpctypes.ReqAddr, result *rpctypes.ReplySessions) error {
	addr, err := parseAddr(in.Addr)
	if err != nil {
		return err
	}
	sessions, err := r.ledger.ListSessions(context.Background(), addr)
	if err != nil {
		return toRPCError("ListSessions", err)
	}
	result.Sessions = sessions
	return nil
}

// GetBalance Rpsls.GetBalance
func (r *Rpsls) GetBalance(in *rpctypes.ReqAddr, result *rpctypes.ReplyBalance) error {
	addr, err := parseAddr(in.Addr)
	if err != nil {
		return err
	}
	balance, err := r.ledger.Balance(context.Background(), addr)
	if err != nil {
		return toRPCError("GetBalance", err)
	}
	result.Addr = addr.Hex()
	result.Balance = balance.String()
	return nil
}

// Deposit Rpsls.Deposit, only served when the faucet is enabled
func (r *Rpsls) Deposit(in *rpctypes.ReqDeposit, result *rpctypes.ReplyBalance) error {
	if !r.faucet {
		return types.ErrUnauthorized
	}
	addr, err := parseAddr(in.Addr)
	if err != nil {
		return err
	}
	amount, err := parseAmount(in.Amount, types.ErrAmount)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := r.ledger.Deposit(ctx, addr, amount); err != nil {
		return toRPCError("Deposit", err)
	}
	return r.GetBalance(&rpctypes.ReqAddr{Addr: in.Addr}, result)
}

// Version Rpsls.Version
func (r *Rpsls) Version(in *rpctypes.ReqNil, result *rpctypes.ReplyVersion) error {
	result.Title = types.Title
	result.Version = types.Version
	result.Timeout = int64(r.ledger.Window().Seconds())
	return nil
}

func parseAddr(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, types.ErrInvalidAddress
	}
	return common.HexToAddress(s), nil
}

func parseFromID(from, id string) (common.Address, common.Address, error) {
	f, err := parseAddr(from)
	if err != nil {
		return f, common.Address{}, err
	}
	i, err := parseAddr(id)
	return f, i, err
}

func parseAmount(s string, bad error) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, bad
	}
	return d, nil
}

// toRPCError 只把哨兵错误的名字返回给客户端
func toRPCError(method string, err error) error {
	if s := types.Sentinel(err); s != nil {
		log.Debug(method, "err", err)
		return s
	}
	log.Error(method, "err", err)
	return types.ErrInternal
}
