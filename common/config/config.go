// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/33cn/rpsls/types"
	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Init 读取配置文件并填充默认值
func Init(path string) (*types.Config, error) {
	var cfg types.Config
	if _, err := tml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.FillDefault(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitOrDefault loads path, or returns the defaults when path is empty
func InitOrDefault(path string) (*types.Config, error) {
	if path == "" {
		return types.InitCfgString("")
	}
	return Init(path)
}
