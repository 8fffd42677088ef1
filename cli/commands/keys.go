// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// KeysCmd keys command
func KeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Wallet encryption keys management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		InitKeysCmd(),
		NewKeyCmd(),
		ImportKeyCmd(),
		ListKeysCmd(),
	)
	return cmd
}

// InitKeysCmd set the wallet password
func InitKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set the wallet password, once",
		Run:   initKeys,
	}
	addPasswordFlag(cmd)
	return cmd
}

func initKeys(cmd *cobra.Command, args []string) {
	w, _, err := openWallet(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	password, _ := cmd.Flags().GetString("password")
	if err := w.keys.SetPassword(password); err != nil {
		fail(err)
		return
	}
	fmt.Println("wallet password set")
}

// NewKeyCmd generate a new address
func NewKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new address with its encryption key",
		Run:   newKey,
	}
	addPasswordFlag(cmd)
	return cmd
}

func addPasswordFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("password", "p", "", "wallet password")
	cmd.MarkFlagRequired("password")
}

func newKey(cmd *cobra.Command, args []string) {
	w, _, err := openWallet(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	if err := w.unlock(cmd); err != nil {
		fail(err)
		return
	}
	addr, err := w.keys.NewAccount()
	if err != nil {
		fail(err)
		return
	}
	fmt.Println(addr.Hex())
}

// ImportKeyCmd create an encryption key for an existing address
func ImportKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create an encryption key for an existing address",
		Run:   importKey,
	}
	cmd.Flags().StringP("addr", "a", "", "address")
	cmd.MarkFlagRequired("addr")
	addPasswordFlag(cmd)
	return cmd
}

func importKey(cmd *cobra.Command, args []string) {
	addr, err := addrFlag(cmd, "addr")
	if err != nil {
		fail(err)
		return
	}
	w, _, err := openWallet(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	if err := w.unlock(cmd); err != nil {
		fail(err)
		return
	}
	if err := w.keys.Import(addr); err != nil {
		fail(err)
		return
	}
	fmt.Println(addr.Hex())
}

// ListKeysCmd list wallet addresses
func ListKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List addresses of the wallet",
		Run:   listKeys,
	}
}

func listKeys(cmd *cobra.Command, args []string) {
	w, _, err := openWallet(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	addrs, err := w.keys.Addresses()
	if err != nil {
		fail(err)
		return
	}
	for _, addr := range addrs {
		fmt.Println(addr.Hex())
	}
}
