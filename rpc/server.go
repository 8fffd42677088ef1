// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc 对外的 json rpc 服务和对应的客户端
package rpc

import (
	"context"
	"net"
	"net/http"
	"net/rpc"
	"time"

	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	log15 "github.com/inconshreveable/log15"
	"github.com/kevinms/leakybucket-go"
	"github.com/shopspring/decimal"
)

var log = log15.New("module", "rpc")

// Ledger is what the server exposes
type Ledger interface {
	CreateSession(ctx context.Context, from common.Address, c types.Commitment, stake decimal.Decimal, opponent common.Address) (common.Address, error)
	JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error
	RevealSession(ctx context.Context, from, id common.Address, move types.Move, salt types.Salt) error
	ClaimTimeout(ctx context.Context, from, id common.Address) error
	Session(ctx context.Context, id common.Address) (*types.Session, error)
	ListSessions(ctx context.Context, addr common.Address) ([]*types.Session, error)
	Balance(ctx context.Context, addr common.Address) (decimal.Decimal, error)
	Deposit(ctx context.Context, addr common.Address, amount decimal.Decimal) error
	Window() time.Duration
}

// JSONRPCServer  a json rpcserver object
type JSONRPCServer struct {
	cfg       *types.RPC
	s         *rpc.Server
	l         net.Listener
	hs        *http.Server
	limiter   *leakybucket.Collector
	whitelist map[string]bool
}

// NewJSONRPCServer registers the Rpsls service over ledger
func NewJSONRPCServer(cfg *types.RPC, ledger Ledger) (*JSONRPCServer, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("Rpsls", &Rpsls{ledger: ledger, faucet: cfg.EnableFaucet}); err != nil {
		return nil, err
	}
	s := &JSONRPCServer{cfg: cfg, s: server, whitelist: make(map[string]bool)}
	for _, ip := range cfg.Whitelist {
		s.whitelist[ip] = true
	}
	if cfg.RateLimit > 0 {
		s.limiter = leakybucket.NewCollector(cfg.RateLimit, cfg.RateBurst, true)
	}
	return s, nil
}

// Listen starts serving on the configured address and returns the bound port
func (s *JSONRPCServer) Listen() (int, error) {
	l, err := net.Listen("tcp", s.cfg.JrpcBindAddr)
	if err != nil {
		return 0, err
	}
	s.l = l
	s.hs = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := s.hs.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Error("JSONRPCServer serve", "err", err)
		}
	}()
	log.Info("JSONRPCServer listen", "addr", l.Addr())
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Close json rpcserver close
func (s *JSONRPCServer) Close() {
	if s.hs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.hs.Shutdown(ctx); err != nil {
		log.Error("JSONRPCServer close", "err", err)
	}
}

func (s *JSONRPCServer) checkIPWhitelist(addr string) bool {
	if len(s.whitelist) == 0 || s.whitelist["0.0.0.0"] {
		return true
	}
	//回环网络直接允许
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		addr = ipv4.String()
	}
	return s.whitelist[addr]
}

func (s *JSONRPCServer) allow(ip string) bool {
	if s.limiter == nil {
		return true
	}
	if s.limiter.Remaining(ip) <= 0 {
		return false
	}
	s.limiter.Add(ip, 1)
	return true
}
