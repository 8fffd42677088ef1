// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ntp 通过 ntp 服务器校准本地时间
package ntp

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"net"
	"sort"
	"time"

	log15 "github.com/inconshreveable/log15"
)

var log = log15.New("module", "ntp")

const ntpEpochOffset = 2208988800

// ErrNetWorkDelay 请求和回复的延时严重不对称
var ErrNetWorkDelay = errors.New("ErrNetWorkDelay")

// ErrNoQuorum 可用的服务器不足一半
var ErrNoQuorum = errors.New("ErrNoQuorum")

// Timeout of one query
var Timeout = 3 * time.Second

// DefaultHosts 默认的 ntp 服务器
var DefaultHosts = []string{
	"time.windows.com:123",
	"ntp.ubuntu.com:123",
	"pool.ntp.org:123",
	"cn.pool.ntp.org:123",
	"time.apple.com:123",
}

// ntp v3 报文, 见 rfc 1305
type packet struct {
	Settings       uint8
	Stratum        uint8
	Poll           int8
	Precision      int8
	RootDelay      uint32
	RootDispersion uint32
	ReferenceID    uint32
	RefTimeSec     uint32
	RefTimeFrac    uint32
	OrigTimeSec    uint32
	OrigTimeFrac   uint32
	RxTimeSec      uint32
	RxTimeFrac     uint32
	TxTimeSec      uint32
	TxTimeFrac     uint32
}

// Offset asks host for the time and returns how far the local clock is behind it.
//
// With t1 the local send time, t2 the server receive time, t3 the server transmit
// time and t4 the local receive time, offset = ((t2-t1)+(t3-t4))/2.
func Offset(host string) (time.Duration, error) {
	conn, err := net.Dial("udp", host)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(Timeout)); err != nil {
		return 0, err
	}
	// 0x1B: no leap warning, version 3, client mode
	t1 := time.Now()
	if err := binary.Write(conn, binary.BigEndian, &packet{Settings: 0x1B}); err != nil {
		return 0, err
	}
	rsp := &packet{}
	if err := binary.Read(conn, binary.BigEndian, rsp); err != nil {
		return 0, err
	}
	t4 := time.Now()
	t2 := fromNtp(rsp.RxTimeSec, rsp.RxTimeFrac)
	t3 := fromNtp(rsp.TxTimeSec, rsp.TxTimeFrac)

	d1 := t2.Sub(t1)
	d2 := t3.Sub(t4)
	//两个方向的差值相差两倍以上时认为无效
	rate := math.Abs(float64(d1)) / math.Abs(float64(d2))
	if rate >= 2 || rate <= 0.5 {
		return 0, ErrNetWorkDelay
	}
	return (d1 + d2) / 2, nil
}

// MedianOffset queries every host and returns the median offset.
// At least half of the hosts have to answer.
func MedianOffset(hosts []string) (time.Duration, error) {
	offsets := make([]time.Duration, 0, len(hosts))
	for _, host := range hosts {
		d, err := Offset(host)
		if err != nil {
			log.Debug("Offset", "host", host, "err", err)
			continue
		}
		offsets = append(offsets, d)
	}
	if len(offsets) == 0 || len(offsets)*2 < len(hosts) {
		return 0, ErrNoQuorum
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets[len(offsets)/2], nil
}

// FixTime applies the median offset through set now and then every interval until ctx is done
func FixTime(ctx context.Context, hosts []string, interval time.Duration, set func(int64)) {
	fix := func() {
		d, err := MedianOffset(hosts)
		if err != nil {
			log.Error("FixTime", "err", err)
			return
		}
		set(int64(d))
		log.Info("change time", "delta", d)
	}
	fix()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fix()
		}
	}
}

func fromNtp(sec, frac uint32) time.Time {
	secs := int64(sec) - ntpEpochOffset
	nanos := (int64(frac) * 1e9) >> 32
	return time.Unix(secs, nanos)
}
