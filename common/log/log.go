// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log 配置 log15 根日志: 控制台输出到 stderr, 文件按大小滚动
package log

import (
	"io"
	"os"

	"github.com/33cn/rpsls/types"
	log15 "github.com/inconshreveable/log15"
	"github.com/inconshreveable/log15/term"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup replaces the root handler with the console and file handlers of cfg.
// Close the returned closer on shutdown to release the log file.
func Setup(cfg *types.Log) (io.Closer, error) {
	if cfg == nil {
		cfg = &types.Log{}
	}
	lvl, err := level(cfg.LogConsoleLevel)
	if err != nil {
		return nil, err
	}
	handlers := []log15.Handler{console(lvl)}
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		lvl, err := level(cfg.Loglevel)
		if err != nil {
			return nil, err
		}
		rotate := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    int(cfg.MaxFileSize),
			MaxBackups: int(cfg.MaxBackups),
			MaxAge:     int(cfg.MaxAge),
			LocalTime:  cfg.LocalTime,
			Compress:   cfg.Compress,
		}
		h := log15.LvlFilterHandler(lvl, log15.StreamHandler(rotate, log15.LogfmtFormat()))
		if cfg.CallerFile {
			h = log15.CallerFileHandler(h)
		}
		if cfg.CallerFunction {
			h = log15.CallerFuncHandler(h)
		}
		handlers = append(handlers, h)
		closer = rotate
	}
	log15.Root().SetHandler(log15.MultiHandler(handlers...))
	return closer, nil
}

// Quiet keeps console records at lvl and above, an unknown lvl means error.
// The cli commands print their results on stdout, so logs never go there.
func Quiet(lvl string) {
	l, err := level(lvl)
	if err != nil {
		l = log15.LvlError
	}
	log15.Root().SetHandler(console(l))
}

// DisableLog drops every record
func DisableLog() {
	log15.Root().SetHandler(log15.DiscardHandler())
}

func console(lvl log15.Lvl) log15.Handler {
	format := log15.LogfmtFormat()
	if term.IsTty(os.Stderr.Fd()) {
		format = log15.TerminalFormat()
	}
	return log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, format))
}

// 未配置时为 error 级别
func level(s string) (log15.Lvl, error) {
	if s == "" {
		return log15.LvlError, nil
	}
	lvl, err := log15.LvlFromString(s)
	if err != nil {
		return lvl, errors.Wrapf(err, "log level %q", s)
	}
	return lvl, nil
}
