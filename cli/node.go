// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/33cn/rpsls/common/config"
	clog "github.com/33cn/rpsls/common/log"
	"github.com/33cn/rpsls/common/ntp"
	"github.com/33cn/rpsls/executor"
	"github.com/33cn/rpsls/metrics"
	"github.com/33cn/rpsls/rpc"
	"github.com/33cn/rpsls/types"
	log15 "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
)

var log = log15.New("module", "node")

// NodeCmd runs the ledger node
func NodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Run the ledger node and serve json rpc",
		Run:   node,
	}
	cmd.Flags().StringP("bind", "b", "", "listen address, overrides [rpc] jrpcBindAddr")
	cmd.Flags().String("datadir", "", "ledger directory, overrides [store] dbPath")
	cmd.Flags().Bool("fixtime", false, "correct the clock against ntp servers")
	return cmd
}

func node(cmd *cobra.Command, args []string) {
	confPath, _ := cmd.Flags().GetString("conf")
	bind, _ := cmd.Flags().GetString("bind")
	datadir, _ := cmd.Flags().GetString("datadir")
	fixtime, _ := cmd.Flags().GetBool("fixtime")
	cfg, err := config.InitOrDefault(confPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if bind != "" {
		cfg.RPC.JrpcBindAddr = bind
	}
	if datadir != "" {
		cfg.Store.DbPath = datadir
	}
	if fixtime {
		cfg.FixTime = true
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := RunNode(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RunNode serves the ledger described by cfg until ctx is done
func RunNode(ctx context.Context, cfg *types.Config) error {
	logs, err := clog.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logs.Close()
	log.Info(cfg.Title+" node", "version", types.Version, "driver", cfg.Store.Driver, "dbPath", cfg.Store.DbPath)

	log.Info("loading executor")
	exec, err := executor.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("begin close executor")
		exec.Close()
	}()

	log.Info("loading rpc")
	srv, err := rpc.NewJSONRPCServer(cfg.RPC, exec)
	if err != nil {
		return err
	}
	port, err := srv.Listen()
	if err != nil {
		return err
	}
	defer func() {
		log.Info("begin close rpc")
		srv.Close()
	}()
	log.Info("node started", "port", port, "timeout", exec.Window(), "faucet", cfg.RPC.EnableFaucet)

	if cfg.FixTime {
		hosts := cfg.NtpHosts
		if len(hosts) == 0 {
			hosts = ntp.DefaultHosts
		}
		go ntp.FixTime(ctx, hosts, time.Minute, types.SetTimeDelta)
	}
	metrics.StartMetrics(ctx, cfg.Metrics)
	<-ctx.Done()
	return nil
}
