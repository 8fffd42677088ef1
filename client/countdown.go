// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"time"

	"github.com/33cn/rpsls/game"
	"github.com/ethereum/go-ethereum/common"
)

// Countdown emits the remaining time of session id once per tick.
// The session is re-read on every tick since a join restarts the clock.
// The channel is closed after a zero value, when the session ends, or when ctx is done.
// It is advisory only and never moves funds.
func (p *Player) Countdown(ctx context.Context, id common.Address) (<-chan time.Duration, error) {
	s, err := p.ledger.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	ch := make(chan time.Duration, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		for {
			if s.Phase.Terminal() {
				return
			}
			remaining := game.Remaining(s.LastActionTime(), s.Window(), p.now())
			select {
			case ch <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining == 0 {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			if fresh, err := p.ledger.Session(ctx, id); err == nil {
				s = fresh
			} else {
				log.Debug("Countdown", "id", id, "err", err)
			}
		}
	}()
	return ch, nil
}
