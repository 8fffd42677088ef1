// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types 定义对局, 配置, 错误等基础类型
package types

import (
	"github.com/shopspring/decimal"
)

// Title is the name used for the cli binary, default file names and the executor.
const Title = "rpsls"

// Version of the node and protocol
const Version = "1.0.0"

// ExecName is the name of the game executor, its escrow pool address derives from it
const ExecName = "rpsls"

// game defaults
const (
	DefaultTimeoutSeconds = 5 * 60
	DefaultRPCAddr        = "localhost:8801"
	DefaultDBBackend      = "goleveldb"
	DefaultDBCache        = 64
	DefaultSessionCache   = 1024
)

var (
	// DefaultMinStake 最小押注
	DefaultMinStake = decimal.RequireFromString("0.001")
	// DefaultMaxStake 最大押注
	DefaultMaxStake = decimal.RequireFromString("10")
)

// key prefixes of the KV stores
var (
	SessionKeyPrefix = []byte("rpsls-session-")
	PlayerKeyPrefix  = []byte("rpsls-player-")
	NonceKeyPrefix   = []byte("rpsls-nonce-")
	AccountKeyPrefix = []byte("rpsls-account-")
	SecretKeyPrefix  = []byte("wallet-secret-")
	PendingKeyPrefix = []byte("wallet-pending-")
	SpentKeyPrefix   = []byte("wallet-spent-")
	KeyringKeyPrefix = []byte("wallet-keyring-")
	KeyringCheckKey  = []byte("wallet-check-keyring")
)
