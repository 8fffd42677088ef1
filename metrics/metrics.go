// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 节点指标, 周期性输出到日志
package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/33cn/rpsls/types"
	log "github.com/inconshreveable/log15"
	go_metrics "github.com/rcrowley/go-metrics"
)

var mlog = log.New("module", "metrics")

// Registry 节点所有指标
var Registry = go_metrics.NewRegistry()

// Counter 计数器
func Counter(name string) go_metrics.Counter {
	return go_metrics.GetOrRegisterCounter(name, Registry)
}

// Timer 耗时统计
func Timer(name string) go_metrics.Timer {
	return go_metrics.GetOrRegisterTimer(name, Registry)
}

// Gauge 当前值
func Gauge(name string) go_metrics.Gauge {
	return go_metrics.GetOrRegisterGauge(name, Registry)
}

// Snapshot flattens every metric of r into name -> value
func Snapshot(r go_metrics.Registry) map[string]interface{} {
	out := make(map[string]interface{})
	r.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case go_metrics.Counter:
			out[name] = m.Count()
		case go_metrics.Gauge:
			out[name] = m.Value()
		case go_metrics.Timer:
			t := m.Snapshot()
			out[name+".count"] = t.Count()
			out[name+".mean"] = time.Duration(t.Mean()).String()
			out[name+".p99"] = time.Duration(t.Percentile(0.99)).String()
		}
	})
	return out
}

// Emit logs one snapshot of r
func Emit(r go_metrics.Registry) {
	snap := Snapshot(r)
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	ctx := make([]interface{}, 0, 2*len(names))
	for _, name := range names {
		ctx = append(ctx, name, snap[name])
	}
	mlog.Info("metrics", ctx...)
}

//StartMetrics 根据配置启动日志输出, ctx 结束时停止
func StartMetrics(ctx context.Context, cfg *types.Metrics) {
	if cfg == nil || !cfg.EnableMetrics {
		mlog.Info("Metrics data is not enabled to emit")
		return
	}
	interval := cfg.Interval()
	if interval <= 0 {
		interval = time.Minute
	}
	mlog.Info("StartMetrics", "interval", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				Emit(Registry)
				return
			case <-ticker.C:
				Emit(Registry)
			}
		}
	}()
}
