// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/33cn/rpsls/rpc/jsonclient"
	rpctypes "github.com/33cn/rpsls/rpc/types"
	"github.com/spf13/cobra"
)

// AccountCmd account command
func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Ledger balances",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		BalanceCmd(),
		DepositCmd(),
	)
	return cmd
}

// BalanceCmd get balance of an address
func BalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Get balance of an address",
		Run:   balance,
	}
	cmd.Flags().StringP("addr", "a", "", "account address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func balance(cmd *cobra.Command, args []string) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	addr, err := addrFlag(cmd, "addr")
	if err != nil {
		fail(err)
		return
	}
	var res rpctypes.ReplyBalance
	ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rpsls.GetBalance", &rpctypes.ReqAddr{Addr: addr.Hex()}, &res)
	ctx.Run()
}

// DepositCmd credit an address from the node faucet
func DepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Credit an address, the node must enable its faucet",
		Run:   deposit,
	}
	cmd.Flags().StringP("addr", "a", "", "account address")
	cmd.MarkFlagRequired("addr")
	cmd.Flags().StringP("amount", "m", "", "amount")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func deposit(cmd *cobra.Command, args []string) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	addr, err := addrFlag(cmd, "addr")
	if err != nil {
		fail(err)
		return
	}
	amount, _ := cmd.Flags().GetString("amount")
	params := &rpctypes.ReqDeposit{Addr: addr.Hex(), Amount: amount}
	var res rpctypes.ReplyBalance
	ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rpsls.Deposit", params, &res)
	ctx.Run()
}
