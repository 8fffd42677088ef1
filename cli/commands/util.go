// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands 玩家使用的命令
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/33cn/rpsls/client"
	"github.com/33cn/rpsls/common/config"
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/rpc"
	"github.com/33cn/rpsls/types"
	"github.com/33cn/rpsls/wallet/keyring"
	"github.com/33cn/rpsls/wallet/secret"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// walletCache 钱包数据库的缓存大小
const walletCache = 16

func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	confPath, _ := cmd.Flags().GetString("conf")
	cfg, err := config.InitOrDefault(confPath)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("wallet"); dir != "" {
		cfg.Wallet.DbPath = dir
	}
	return cfg, nil
}

type wallet struct {
	db      dbm.DB
	keys    *keyring.Keyring
	secrets *secret.Store
}

func openWallet(cmd *cobra.Command) (*wallet, *types.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	db, err := dbm.NewDB("wallet", cfg.Wallet.Driver, cfg.Wallet.DbPath, walletCache)
	if err != nil {
		return nil, nil, err
	}
	keys := keyring.New(db)
	return &wallet{db: db, keys: keys, secrets: secret.New(db, keys)}, cfg, nil
}

func (w *wallet) unlock(cmd *cobra.Command) error {
	password, _ := cmd.Flags().GetString("password")
	return w.keys.Unlock(password)
}

func (w *wallet) Close() {
	w.keys.Lock()
	w.db.Close()
}

func newRPCClient(cmd *cobra.Command) (*rpc.Client, error) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	return rpc.NewClient(rpcLaddr)
}

// newPlayer opens the wallet and a player talking to the node at --rpc_laddr
func newPlayer(cmd *cobra.Command) (*client.Player, *wallet, error) {
	w, cfg, err := openWallet(cmd)
	if err != nil {
		return nil, nil, err
	}
	min, max, err := cfg.Game.StakeBounds()
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	ledger, err := newRPCClient(cmd)
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	return client.NewPlayer(ledger, w.secrets, client.WithStakeBounds(min, max)), w, nil
}

func addrFlag(cmd *cobra.Command, name string) (common.Address, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrap(types.ErrInvalidAddress, name)
	}
	return common.HexToAddress(s), nil
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
}
