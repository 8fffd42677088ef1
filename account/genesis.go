// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// GenesisInit credits every allocation, skipped when the pool account already exists
func (acc *DB) GenesisInit(allocs []*types.GenesisAlloc) (bool, error) {
	_, err := acc.db.Get(acc.AccountKey(acc.execAddr))
	if err == nil {
		return false, nil
	}
	if err != dbm.ErrNotFoundInDb {
		return false, err
	}
	for _, alloc := range allocs {
		if !common.IsHexAddress(alloc.Addr) {
			return false, errors.Wrap(types.ErrInvalidAddress, alloc.Addr)
		}
		amount, err := decimal.NewFromString(alloc.Amount)
		if err != nil {
			return false, errors.Wrap(types.ErrAmount, alloc.Amount)
		}
		if err := acc.Deposit(common.HexToAddress(alloc.Addr), amount); err != nil {
			return false, err
		}
		alog.Info("GenesisInit", "addr", alloc.Addr, "amount", amount)
	}
	// 资金池账户存在即表示已初始化
	if err := acc.SaveAccount(&Account{Addr: acc.execAddr, Balance: decimal.Zero}); err != nil {
		return false, err
	}
	return true, nil
}
