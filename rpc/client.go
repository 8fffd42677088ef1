// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"

	"github.com/33cn/rpsls/rpc/jsonclient"
	rpctypes "github.com/33cn/rpsls/rpc/types"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Client talks to a node over json rpc, it has the same methods as the executor
type Client struct {
	jc *jsonclient.JSONClient
}

// NewClient client of the node at addr
func NewClient(addr string) (*Client, error) {
	jc, err := jsonclient.NewJSONClient(addr)
	if err != nil {
		return nil, err
	}
	return &Client{jc: jc}, nil
}

// CreateSession Rpsls.CreateSession
func (c *Client) CreateSession(ctx context.Context, from common.Address, commitment types.Commitment,
	stake decimal.Decimal, opponent common.Address) (common.Address, error) {
	req := &rpctypes.ReqCreateSession{
		From:       from.Hex(),
		Commitment: commitment.Hex(),
		Stake:      stake.String(),
	}
	if opponent != (common.Address{}) {
		req.Opponent = opponent.Hex()
	}
	var res rpctypes.ReplyCreateSession
	if err := c.jc.Call(ctx, "CreateSession", req, &res); err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(res.ID) {
		return common.Address{}, errors.Wrap(types.ErrTransport, "bad session id "+res.ID)
	}
	return common.HexToAddress(res.ID), nil
}

// JoinSession Rpsls.JoinSession
func (c *Client) JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error {
	req := &rpctypes.ReqJoinSession{From: from.Hex(), ID: id.Hex(), Move: move.String(), Stake: stake.String()}
	return c.jc.Call(ctx, "JoinSession", req, &rpctypes.Reply{})
}

// RevealSession Rpsls.RevealSession
func (c *Client) RevealSession(ctx context.Context, from, id common.Address, move types.Move, salt types.Salt) error {
	req := &rpctypes.ReqRevealSession{From: from.Hex(), ID: id.Hex(), Move: move.String(), Salt: salt.Hex()}
	return c.jc.Call(ctx, "RevealSession", req, &rpctypes.Reply{})
}

// ClaimTimeout Rpsls.ClaimTimeout
func (c *Client) ClaimTimeout(ctx context.Context, from, id common.Address) error {
	req := &rpctypes.ReqClaimTimeout{From: from.Hex(), ID: id.Hex()}
	return c.jc.Call(ctx, "ClaimTimeout", req, &rpctypes.Reply{})
}

// Session Rpsls.GetSession
func (c *Client) Session(ctx context.Context, id common.Address) (*types.Session, error) {
	var s types.Session
	if err := c.jc.Call(ctx, "GetSession", &rpctypes.ReqSession{ID: id.Hex()}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions Rpsls.ListSessions
func (c *Client) ListSessions(ctx context.Context, addr common.Address) ([]*types.Session, error) {
	var res rpctypes.ReplySessions
	if err := c.jc.Call(ctx, "ListSessions", &rpctypes.ReqAddr{Addr: addr.Hex()}, &res); err != nil {
		return nil, err
	}
	return res.Sessions, nil
}

// Balance Rpsls.GetBalance
func (c *Client) Balance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	var res rpctypes.ReplyBalance
	if err := c.jc.Call(ctx, "GetBalance", &rpctypes.ReqAddr{Addr: addr.Hex()}, &res); err != nil {
		return decimal.Zero, err
	}
	return parseBalance(res.Balance)
}

// Deposit Rpsls.Deposit
func (c *Client) Deposit(ctx context.Context, addr common.Address, amount decimal.Decimal) error {
	req := &rpctypes.ReqDeposit{Addr: addr.Hex(), Amount: amount.String()}
	return c.jc.Call(ctx, "Deposit", req, &rpctypes.ReplyBalance{})
}

// Version Rpsls.Version
func (c *Client) Version(ctx context.Context) (*rpctypes.ReplyVersion, error) {
	var res rpctypes.ReplyVersion
	if err := c.jc.Call(ctx, "Version", &rpctypes.ReqNil{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func parseBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrap(types.ErrTransport, "bad balance "+s)
	}
	return d, nil
}
