// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"sync/atomic"
	"time"
)

var deltaTime int64

// MaxTimeDelta 超过该值不做修正
const MaxTimeDelta = 60 * time.Second

//SetTimeDelta realtime - localtime
//为了系统的安全，我们只做小范围时间错误的修复
func SetTimeDelta(dt int64) {
	if dt > int64(MaxTimeDelta) || dt < -int64(MaxTimeDelta) {
		dt = 0
	}
	atomic.StoreInt64(&deltaTime, dt)
}

// Now is the ledger's authoritative clock, truncated to whole seconds like a block timestamp.
func Now() time.Time {
	dt := time.Duration(atomic.LoadInt64(&deltaTime))
	return time.Now().Add(dt).Truncate(time.Second)
}
