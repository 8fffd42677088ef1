// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cfg, err := Init("testdata/rpsls.toml")
	require.NoError(t, err)
	assert.Equal(t, "rpsls", cfg.Title)
	assert.Equal(t, "memdb", cfg.Store.Driver)
	assert.Equal(t, int64(300), cfg.Game.TimeoutSeconds)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.RPC.Whitelist)
	assert.Equal(t, int64(20), cfg.RPC.RateBurst)
	assert.True(t, cfg.Metrics.EnableMetrics)
	assert.Equal(t, "30s", cfg.Metrics.Interval().String())
	require.Len(t, cfg.Genesis, 1)
}

func TestInitMissingFile(t *testing.T) {
	_, err := Init("testdata/nope.toml")
	assert.Error(t, err)
}

func TestInitOrDefault(t *testing.T) {
	cfg, err := InitOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "goleveldb", cfg.Store.Driver)
	assert.Equal(t, int64(300), cfg.Game.TimeoutSeconds)
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Init("../../cmd/rpsls/rpsls.toml")
	require.NoError(t, err)
	assert.Equal(t, "goleveldb", cfg.Store.Driver)
	assert.False(t, cfg.RPC.EnableFaucet)
	assert.Equal(t, uint32(300), cfg.Log.MaxFileSize)
	require.Len(t, cfg.Genesis, 2)
	min, max, err := cfg.Game.StakeBounds()
	require.NoError(t, err)
	assert.Equal(t, "0.001", min.String())
	assert.Equal(t, "10", max.String())
}
