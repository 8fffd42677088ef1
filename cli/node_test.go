// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/33cn/rpsls/client"
	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/rpc"
	"github.com/33cn/rpsls/types"
	"github.com/33cn/rpsls/wallet/keyring"
	"github.com/33cn/rpsls/wallet/secret"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunNode(t *testing.T) {
	bind := freeAddr(t)
	cfg, err := types.InitCfgString(`
[rpc]
jrpcBindAddr = "` + bind + `"
enableFaucet = true
[store]
driver = "memdb"
`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunNode(ctx, cfg)
	}()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	ledger, err := rpc.NewClient(bind)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := ledger.Version(ctx)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	wdb, err := dbm.NewGoMemDB("wallet", "", 0)
	require.NoError(t, err)
	keys := keyring.New(wdb)
	require.NoError(t, keys.SetPassword("secret"))
	alice, err := keys.NewAccount()
	require.NoError(t, err)
	bob := common.HexToAddress("0x2000000000000000000000000000000000000002")

	require.NoError(t, ledger.Deposit(ctx, alice, decimal.NewFromInt(5)))
	require.NoError(t, ledger.Deposit(ctx, bob, decimal.NewFromInt(5)))

	p := client.NewPlayer(ledger, secret.New(wdb, keys))
	id, err := p.CreateGame(ctx, alice, types.Rock, decimal.NewFromInt(1), common.Address{})
	require.NoError(t, err)
	_, err = p.Join(ctx, bob, id, types.Scissors)
	require.NoError(t, err)

	keys.Lock()
	_, err = p.Solve(ctx, alice, id)
	assert.Equal(t, types.ErrKeyringLocked, err)
	require.NoError(t, keys.Unlock("secret"))

	res, err := p.Solve(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer1Wins, res.Session.Outcome)
	b, err := ledger.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "6", b.String())
}
