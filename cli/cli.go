// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli rpsls 命令行入口, 包括节点和玩家命令
package cli

import (
	"fmt"
	"os"

	"github.com/33cn/rpsls/cli/commands"
	clog "github.com/33cn/rpsls/common/log"
	"github.com/33cn/rpsls/types"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   types.Title,
	Short: types.Title + " commit-reveal Rock Paper Scissors Lizard Spock",
}

func init() {
	rootCmd.AddCommand(
		NodeCmd(),
		commands.KeysCmd(),
		commands.GameCmd(),
		commands.AccountCmd(),
		commands.VersionCmd(),
	)
}

//Run :
func Run(RPCAddr, ConfPath, WalletDir string) {
	clog.Quiet("error")
	rootCmd.PersistentFlags().String("rpc_laddr", RPCAddr, "http url of the node")
	rootCmd.PersistentFlags().String("conf", ConfPath, "config file, defaults are used when empty")
	rootCmd.PersistentFlags().String("wallet", WalletDir, "wallet directory, overrides [wallet] dbPath")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
