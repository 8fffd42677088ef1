// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/33cn/rpsls/rpc/jsonclient"
	rpctypes "github.com/33cn/rpsls/rpc/types"
	"github.com/spf13/cobra"
)

// VersionCmd version command
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get node version",
		Run:   version,
	}

	return cmd
}

func version(cmd *cobra.Command, args []string) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	var res rpctypes.ReplyVersion
	ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rpsls.Version", &rpctypes.ReqNil{}, &res)
	ctx.Run()
}
