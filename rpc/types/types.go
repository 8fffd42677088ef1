// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types json rpc 请求和应答
package types

import (
	rtypes "github.com/33cn/rpsls/types"
)

// ReqNil 无参数
type ReqNil struct{}

// ReqCreateSession Rpsls.CreateSession
type ReqCreateSession struct {
	From       string `json:"from"`
	Commitment string `json:"commitment"`
	Stake      string `json:"stake"`
	Opponent   string `json:"opponent,omitempty"`
}

// ReqJoinSession Rpsls.JoinSession
type ReqJoinSession struct {
	From  string `json:"from"`
	ID    string `json:"id"`
	Move  string `json:"move"`
	Stake string `json:"stake"`
}

// ReqRevealSession Rpsls.RevealSession
type ReqRevealSession struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Move string `json:"move"`
	Salt string `json:"salt"`
}

// ReqClaimTimeout Rpsls.ClaimTimeout
type ReqClaimTimeout struct {
	From string `json:"from"`
	ID   string `json:"id"`
}

// ReqSession Rpsls.GetSession
type ReqSession struct {
	ID string `json:"id"`
}

// ReqAddr Rpsls.ListSessions, Rpsls.GetBalance
type ReqAddr struct {
	Addr string `json:"addr"`
}

// ReqDeposit Rpsls.Deposit
type ReqDeposit struct {
	Addr   string `json:"addr"`
	Amount string `json:"amount"`
}

// Reply 通用应答
type Reply struct {
	IsOk bool   `json:"isOK"`
	Msg  string `json:"msg"`
}

// ReplyCreateSession new session id
type ReplyCreateSession struct {
	ID string `json:"id"`
}

// ReplySessions sessions of an address
type ReplySessions struct {
	Sessions []*rtypes.Session `json:"sessions"`
}

// ReplyBalance balance of an address
type ReplyBalance struct {
	Addr    string `json:"addr"`
	Balance string `json:"balance"`
}

// ReplyVersion node version
type ReplyVersion struct {
	Title   string `json:"title"`
	Version string `json:"version"`
	Timeout int64  `json:"timeout"`
}
