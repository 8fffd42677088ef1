// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"io/ioutil"
	"time"

	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Config 节点和客户端共用的配置
type Config struct {
	Title string `toml:"title"`
	// FixTime corrects types.Now against NtpHosts
	FixTime  bool            `toml:"fixTime"`
	NtpHosts []string        `toml:"ntpHosts"`
	Log      *Log            `toml:"log"`
	RPC      *RPC            `toml:"rpc"`
	Store    *Store          `toml:"store"`
	Game     *Game           `toml:"game"`
	Wallet   *Wallet         `toml:"wallet"`
	Metrics  *Metrics        `toml:"metrics"`
	Genesis  []*GenesisAlloc `toml:"genesis"`
}

// Log 日志配置
type Log struct {
	Loglevel        string `toml:"loglevel"`
	LogConsoleLevel string `toml:"logConsoleLevel"`
	LogFile         string `toml:"logFile"`
	MaxFileSize     uint32 `toml:"maxFileSize"`
	MaxBackups      uint32 `toml:"maxBackups"`
	MaxAge          uint32 `toml:"maxAge"`
	LocalTime       bool   `toml:"localTime"`
	Compress        bool   `toml:"compress"`
	CallerFile      bool   `toml:"callerFile"`
	CallerFunction  bool   `toml:"callerFunction"`
}

// RPC json rpc server configuration
type RPC struct {
	JrpcBindAddr string   `toml:"jrpcBindAddr"`
	Whitelist    []string `toml:"whitelist"`
	CorsOrigins  []string `toml:"corsOrigins"`
	// RateLimit requests per second per remote ip, 0 disables limiting
	RateLimit    float64 `toml:"rateLimit"`
	RateBurst    int64   `toml:"rateBurst"`
	EnableFaucet bool    `toml:"enableFaucet"`
}

// Store ledger database configuration
type Store struct {
	Driver       string `toml:"driver"`
	DbPath       string `toml:"dbPath"`
	DbCache      int32  `toml:"dbCache"`
	SessionCache int    `toml:"sessionCache"`
}

// Game protocol parameters
type Game struct {
	TimeoutSeconds int64  `toml:"timeoutSeconds"`
	MinStake       string `toml:"minStake"`
	MaxStake       string `toml:"maxStake"`
}

// Wallet local secret and keyring storage
type Wallet struct {
	Driver string `toml:"driver"`
	DbPath string `toml:"dbPath"`
}

// Metrics go-metrics emitter configuration
type Metrics struct {
	EnableMetrics bool   `toml:"enableMetrics"`
	EmitInterval  string `toml:"emitInterval"`
}

// GenesisAlloc initial balance of an address, credited once when the ledger db is empty
type GenesisAlloc struct {
	Addr   string `toml:"addr"`
	Amount string `toml:"amount"`
}

// InitCfgString decodes a toml document and fills defaults
func InitCfgString(cfgstring string) (*Config, error) {
	var cfg Config
	if _, err := tml.Decode(cfgstring, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.FillDefault(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadFile 读取配置文件
func ReadFile(path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FillDefault sets every missing value and validates the game parameters
func (cfg *Config) FillDefault() error {
	if cfg.Title == "" {
		cfg.Title = Title
	}
	if cfg.Log == nil {
		cfg.Log = &Log{}
	}
	if cfg.RPC == nil {
		cfg.RPC = &RPC{}
	}
	if cfg.RPC.JrpcBindAddr == "" {
		cfg.RPC.JrpcBindAddr = DefaultRPCAddr
	}
	if cfg.RPC.RateLimit > 0 && cfg.RPC.RateBurst <= 0 {
		cfg.RPC.RateBurst = int64(cfg.RPC.RateLimit) * 2
	}
	if cfg.Store == nil {
		cfg.Store = &Store{}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultDBBackend
	}
	if cfg.Store.DbPath == "" {
		cfg.Store.DbPath = "datadir"
	}
	if cfg.Store.DbCache <= 0 {
		cfg.Store.DbCache = DefaultDBCache
	}
	if cfg.Store.SessionCache <= 0 {
		cfg.Store.SessionCache = DefaultSessionCache
	}
	if cfg.Game == nil {
		cfg.Game = &Game{}
	}
	if cfg.Game.TimeoutSeconds <= 0 {
		cfg.Game.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Game.MinStake == "" {
		cfg.Game.MinStake = DefaultMinStake.String()
	}
	if cfg.Game.MaxStake == "" {
		cfg.Game.MaxStake = DefaultMaxStake.String()
	}
	min, max, err := cfg.Game.StakeBounds()
	if err != nil {
		return err
	}
	if !min.IsPositive() || max.LessThan(min) {
		return errors.Wrapf(ErrInvalidStake, "stake bounds [%s, %s]", min, max)
	}
	if cfg.Wallet == nil {
		cfg.Wallet = &Wallet{}
	}
	if cfg.Wallet.Driver == "" {
		cfg.Wallet.Driver = DefaultDBBackend
	}
	if cfg.Wallet.DbPath == "" {
		cfg.Wallet.DbPath = "wallet"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
	if cfg.Metrics.EmitInterval == "" {
		cfg.Metrics.EmitInterval = "1m"
	}
	if _, err := time.ParseDuration(cfg.Metrics.EmitInterval); err != nil {
		return errors.Wrap(ErrInvalidParam, "metrics emitInterval: "+err.Error())
	}
	return nil
}

// StakeBounds parses the configured stake limits
func (g *Game) StakeBounds() (min, max decimal.Decimal, err error) {
	min, err = decimal.NewFromString(g.MinStake)
	if err != nil {
		return min, max, errors.Wrap(ErrInvalidStake, "minStake: "+err.Error())
	}
	max, err = decimal.NewFromString(g.MaxStake)
	if err != nil {
		return min, max, errors.Wrap(ErrInvalidStake, "maxStake: "+err.Error())
	}
	return min, max, nil
}

// Window returns the configured timeout window
func (g *Game) Window() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Interval returns the parsed emit interval, FillDefault has validated it
func (m *Metrics) Interval() time.Duration {
	d, _ := time.ParseDuration(m.EmitInterval)
	return d
}
