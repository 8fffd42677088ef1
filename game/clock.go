// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package game

import (
	"time"
)

// DefaultWindow 默认超时时间
const DefaultWindow = 5 * time.Minute

// Remaining is max(0, last+window-now)
func Remaining(last time.Time, window time.Duration, now time.Time) time.Duration {
	left := last.Add(window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the deadline last+window has been reached
func Expired(last time.Time, window time.Duration, now time.Time) bool {
	return Remaining(last, window, now) == 0
}

// TimeoutClock evaluates a fixed window
type TimeoutClock struct {
	Window time.Duration
}

// NewTimeoutClock returns a clock with window, or DefaultWindow when window <= 0
func NewTimeoutClock(window time.Duration) TimeoutClock {
	if window <= 0 {
		window = DefaultWindow
	}
	return TimeoutClock{Window: window}
}

// Remaining time before last action expires
func (c TimeoutClock) Remaining(last, now time.Time) time.Duration {
	return Remaining(last, c.Window, now)
}

// Expired since last action
func (c TimeoutClock) Expired(last, now time.Time) bool {
	return Expired(last, c.Window, now)
}

// Deadline of last action
func (c TimeoutClock) Deadline(last time.Time) time.Time {
	return last.Add(c.Window)
}
