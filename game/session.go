// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package game 实现 commit-reveal 对局的状态机
package game

import (
	"time"

	"github.com/33cn/rpsls/common/commit"
	"github.com/33cn/rpsls/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Funds moves stakes in and out of escrow. Every transition calls it only after
// all checks have passed, and a failed call aborts the transition.
type Funds interface {
	Escrow(from common.Address, amount decimal.Decimal) error
	Payout(to common.Address, amount decimal.Decimal) error
	Refund(to common.Address, amount decimal.Decimal) error
}

// Session drives the state transitions of one types.Session
type Session struct {
	state *types.Session
}

// Load wraps an existing session
func Load(s *types.Session) *Session {
	return &Session{state: s}
}

// State returns a copy of the current state
func (g *Session) State() *types.Session {
	return g.state.Clone()
}

// Create posts player1's commitment and escrows the stake.
// A zero opponent lets anybody other than player1 join.
func Create(id, player1, opponent common.Address, c types.Commitment, stake decimal.Decimal,
	window time.Duration, now time.Time, funds Funds) (*Session, error) {
	if player1 == (common.Address{}) || opponent == player1 {
		return nil, types.ErrInvalidAddress
	}
	if c.IsZero() {
		return nil, types.ErrInvalidParam
	}
	if !stake.IsPositive() {
		return nil, types.ErrInvalidStake
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if err := funds.Escrow(player1, stake); err != nil {
		return nil, err
	}
	return &Session{state: &types.Session{
		ID:         id,
		Player1:    player1,
		Opponent:   opponent,
		Commitment: c,
		Stake:      stake,
		Escrowed:   stake,
		CreatedAt:  now.Unix(),
		LastAction: now.Unix(),
		Timeout:    int64(window / time.Second),
		Phase:      types.PhaseCreated,
	}}, nil
}

// Join puts player2's plaintext move and matching stake on the table
func (g *Session) Join(caller common.Address, move types.Move, stake decimal.Decimal, now time.Time, funds Funds) error {
	s := g.state
	if s.Phase != types.PhaseCreated {
		return types.ErrAlreadyJoined
	}
	if caller == (common.Address{}) || caller == s.Player1 {
		return types.ErrUnauthorized
	}
	if s.HasOpponent() && caller != s.Opponent {
		return types.ErrUnauthorized
	}
	if !move.Valid() {
		return types.ErrInvalidMove
	}
	if !stake.Equal(s.Stake) {
		return types.ErrStakeMismatch
	}
	if err := funds.Escrow(caller, stake); err != nil {
		return err
	}
	s.Player2 = caller
	s.Player2Move = move
	s.Escrowed = s.Pot()
	s.Phase = types.PhaseAwaitingReveal
	g.touch(now)
	return nil
}

// Reveal opens player1's commitment and settles the pot.
// A mismatch leaves the session as it was so player1 may retry.
func (g *Session) Reveal(caller common.Address, move types.Move, salt types.Salt, now time.Time, funds Funds) error {
	s := g.state
	if s.Phase.Terminal() {
		return types.ErrSessionClosed
	}
	if s.Phase != types.PhaseAwaitingReveal {
		return types.ErrNotJoined
	}
	if caller != s.Player1 {
		return types.ErrUnauthorized
	}
	if !commit.Verify(s.Commitment, move, salt) {
		return types.ErrCommitmentMismatch
	}
	outcome, err := Resolve(move, s.Player2Move)
	if err != nil {
		return errors.Wrap(types.ErrInternal, "stored player2 move: "+err.Error())
	}
	var winner common.Address
	switch outcome {
	case types.OutcomeTie:
		if err := funds.Refund(s.Player1, s.Stake); err != nil {
			return err
		}
		if err := funds.Refund(s.Player2, s.Stake); err != nil {
			return err
		}
	case types.OutcomePlayer1Wins:
		winner = s.Player1
	default:
		winner = s.Player2
	}
	if winner != (common.Address{}) {
		if err := funds.Payout(winner, s.Pot()); err != nil {
			return err
		}
	}
	s.Player1Move = move
	s.Outcome = outcome
	s.Winner = winner
	g.finish(types.PhaseResolved, now)
	return nil
}

// ClaimTimeout ends a stalled session once the window since the last action has passed.
// Before anybody joined player1 gets the stake back, afterwards player2 takes the pot.
func (g *Session) ClaimTimeout(caller common.Address, now time.Time, funds Funds) error {
	s := g.state
	if s.Phase.Terminal() {
		return types.ErrSessionClosed
	}
	if !s.IsParticipant(caller) {
		return types.ErrUnauthorized
	}
	if !Expired(s.LastActionTime(), s.Window(), now) {
		return types.ErrDeadlineNotReached
	}
	switch s.Phase {
	case types.PhaseCreated:
		if err := funds.Refund(s.Player1, s.Stake); err != nil {
			return err
		}
		s.Outcome = types.OutcomePlayer2TimedOut
		g.finish(types.PhaseCancelled, now)
	case types.PhaseAwaitingReveal:
		if err := funds.Payout(s.Player2, s.Pot()); err != nil {
			return err
		}
		s.Outcome = types.OutcomePlayer1TimedOut
		s.Winner = s.Player2
		g.finish(types.PhaseResolved, now)
	default:
		return errors.Wrapf(types.ErrInternal, "phase %s", s.Phase)
	}
	return nil
}

// Remaining time before the session can be timed out
func (g *Session) Remaining(now time.Time) time.Duration {
	return Remaining(g.state.LastActionTime(), g.state.Window(), now)
}

func (g *Session) finish(phase types.Phase, now time.Time) {
	g.state.Phase = phase
	g.state.Escrowed = decimal.Zero
	g.touch(now)
}

// lastAction 只能向前
func (g *Session) touch(now time.Time) {
	if ts := now.Unix(); ts > g.state.LastAction {
		g.state.LastAction = ts
	}
}
