// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/33cn/rpsls/types"
	go_metrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	r := go_metrics.NewRegistry()
	go_metrics.GetOrRegisterCounter("rpsls.create", r).Inc(3)
	go_metrics.GetOrRegisterGauge("rpsls.sessions", r).Update(7)
	go_metrics.GetOrRegisterTimer("rpsls.reveal", r).Update(time.Millisecond)

	snap := Snapshot(r)
	assert.Equal(t, int64(3), snap["rpsls.create"])
	assert.Equal(t, int64(7), snap["rpsls.sessions"])
	assert.Equal(t, int64(1), snap["rpsls.reveal.count"])
	assert.Equal(t, "1ms", snap["rpsls.reveal.mean"])
	Emit(r)
}

func TestHelpers(t *testing.T) {
	Counter("test.counter").Inc(1)
	assert.Equal(t, Counter("test.counter"), Counter("test.counter"))
	assert.Equal(t, int64(1), Snapshot(Registry)["test.counter"])
}

func TestStartMetrics(t *testing.T) {
	StartMetrics(context.Background(), nil)
	StartMetrics(context.Background(), &types.Metrics{EnableMetrics: false})

	ctx, cancel := context.WithCancel(context.Background())
	StartMetrics(ctx, &types.Metrics{EnableMetrics: true, EmitInterval: "10ms"})
	time.Sleep(30 * time.Millisecond)
	cancel()
}
