// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package account 实现押注资产的记账
*/
package account

//package for account manger
//1. load from db
//2. save to db
//3. Transfer
//4. Deposit
//5. Escrow / Payout / Refund through the executor pool address

import (
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var alog = log.New("module", "account")

// Account balance of one address
type Account struct {
	Addr    common.Address  `json:"addr"`
	Balance decimal.Decimal `json:"balance"`
}

type accountRLP struct {
	Addr    common.Address
	Balance string
}

// ReceiptAccountTransfer 余额变化
type ReceiptAccountTransfer struct {
	Prev    *Account
	Current *Account
}

// DB for account
type DB struct {
	db               dbm.KV
	accountKeyPrefix []byte
	execAddr         common.Address
	receipts         []*ReceiptAccountTransfer
}

// ExecAddress 执行器的资金池地址
func ExecAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(name)))
}

// NewAccountDB accounts of execer, stored in db
func NewAccountDB(execer string, db dbm.KV) *DB {
	return &DB{
		db:               db,
		accountKeyPrefix: types.AccountKeyPrefix,
		execAddr:         ExecAddress(execer),
	}
}

// SetDB 切换底层存储, 清空收据
func (acc *DB) SetDB(db dbm.KV) *DB {
	acc.db = db
	acc.receipts = nil
	return acc
}

// ExecAddr pool address holding escrowed stakes
func (acc *DB) ExecAddr() common.Address {
	return acc.execAddr
}

// AccountKey key of addr
func (acc *DB) AccountKey(addr common.Address) []byte {
	key := make([]byte, 0, len(acc.accountKeyPrefix)+common.AddressLength)
	key = append(key, acc.accountKeyPrefix...)
	return append(key, addr.Bytes()...)
}

// LoadAccount reads addr, a missing account has zero balance
func (acc *DB) LoadAccount(addr common.Address) (*Account, error) {
	value, err := acc.db.Get(acc.AccountKey(addr))
	if err == dbm.ErrNotFoundInDb {
		return &Account{Addr: addr, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	var dec accountRLP
	if err := rlp.DecodeBytes(value, &dec); err != nil {
		alog.Error("LoadAccount", "addr", addr, "err", err)
		return nil, errors.Wrap(types.ErrUnmarshal, err.Error())
	}
	balance, err := decimal.NewFromString(dec.Balance)
	if err != nil {
		return nil, errors.Wrap(types.ErrUnmarshal, err.Error())
	}
	return &Account{Addr: dec.Addr, Balance: balance}, nil
}

// SaveAccount writes a
func (acc *DB) SaveAccount(a *Account) error {
	value, err := rlp.EncodeToBytes(&accountRLP{Addr: a.Addr, Balance: a.Balance.String()})
	if err != nil {
		return errors.Wrap(types.ErrMarshal, err.Error())
	}
	return acc.db.Set(acc.AccountKey(a.Addr), value)
}

// Balance of addr
func (acc *DB) Balance(addr common.Address) (decimal.Decimal, error) {
	a, err := acc.LoadAccount(addr)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// CheckTransfer 检查余额是否足够
func (acc *DB) CheckTransfer(from common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return types.ErrAmount
	}
	accFrom, err := acc.LoadAccount(from)
	if err != nil {
		return err
	}
	if accFrom.Balance.LessThan(amount) {
		return types.ErrNoBalance
	}
	return nil
}

// Transfer moves amount from one address to another
func (acc *DB) Transfer(from, to common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return types.ErrAmount
	}
	if from == to {
		return types.ErrInvalidAddress
	}
	accFrom, err := acc.LoadAccount(from)
	if err != nil {
		return err
	}
	accTo, err := acc.LoadAccount(to)
	if err != nil {
		return err
	}
	if accFrom.Balance.LessThan(amount) {
		alog.Debug("Transfer", "from", from, "balance", accFrom.Balance, "amount", amount)
		return types.ErrNoBalance
	}
	copyfrom := *accFrom
	copyto := *accTo
	accFrom.Balance = accFrom.Balance.Sub(amount)
	accTo.Balance = accTo.Balance.Add(amount)
	if err := acc.SaveAccount(accFrom); err != nil {
		return err
	}
	if err := acc.SaveAccount(accTo); err != nil {
		return err
	}
	acc.receipts = append(acc.receipts,
		&ReceiptAccountTransfer{Prev: &copyfrom, Current: accFrom},
		&ReceiptAccountTransfer{Prev: &copyto, Current: accTo})
	return nil
}

// Deposit credits addr out of thin air, used by genesis and the faucet
func (acc *DB) Deposit(addr common.Address, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return types.ErrAmount
	}
	accTo, err := acc.LoadAccount(addr)
	if err != nil {
		return err
	}
	copyto := *accTo
	accTo.Balance = accTo.Balance.Add(amount)
	if err := acc.SaveAccount(accTo); err != nil {
		return err
	}
	acc.receipts = append(acc.receipts, &ReceiptAccountTransfer{Prev: &copyto, Current: accTo})
	return nil
}

// Escrow locks amount of from in the pool
func (acc *DB) Escrow(from common.Address, amount decimal.Decimal) error {
	return acc.Transfer(from, acc.execAddr, amount)
}

// Payout pays amount from the pool to the winner
func (acc *DB) Payout(to common.Address, amount decimal.Decimal) error {
	return acc.Transfer(acc.execAddr, to, amount)
}

// Refund returns amount from the pool to its owner
func (acc *DB) Refund(to common.Address, amount decimal.Decimal) error {
	return acc.Transfer(acc.execAddr, to, amount)
}

// Receipts balance changes since the last SetDB
func (acc *DB) Receipts() []*ReceiptAccountTransfer {
	return acc.receipts
}
