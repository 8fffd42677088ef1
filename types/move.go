// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"strconv"
	"strings"
)

// Move is one of the five gestures, encoded as its ordinal. MoveNone is never a valid move.
type Move uint8

// moves
const (
	MoveNone Move = iota
	Rock
	Paper
	Scissors
	Lizard
	Spock
)

// AllMoves lists the valid moves in ordinal order
var AllMoves = []Move{Rock, Paper, Scissors, Lizard, Spock}

var moveNames = [...]string{"None", "Rock", "Paper", "Scissors", "Lizard", "Spock"}

// Valid reports whether m is one of Rock..Spock
func (m Move) Valid() bool {
	return m >= Rock && m <= Spock
}

func (m Move) String() string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return "Move(" + strconv.Itoa(int(m)) + ")"
}

// ParseMove accepts a move name (any case) or its ordinal 1..5.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		m := Move(n)
		if !m.Valid() {
			return MoveNone, ErrInvalidMove
		}
		return m, nil
	}
	for _, m := range AllMoves {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return MoveNone, ErrInvalidMove
}

// Phase is the lifecycle state of a session
type Phase uint8

// phases
const (
	PhaseNone Phase = iota
	PhaseCreated
	PhaseAwaitingReveal
	PhaseResolved
	PhaseCancelled
)

var phaseNames = [...]string{"None", "Created", "AwaitingReveal", "Resolved", "Cancelled"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Phase(" + strconv.Itoa(int(p)) + ")"
}

// Terminal reports whether no transition may leave p
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseCancelled
}

// Outcome is how a session ended
type Outcome uint8

// outcomes
const (
	OutcomeNone Outcome = iota
	OutcomeTie
	OutcomePlayer1Wins
	OutcomePlayer2Wins
	// OutcomePlayer1TimedOut player1 never revealed, player2 takes the pot
	OutcomePlayer1TimedOut
	// OutcomePlayer2TimedOut nobody joined, player1 is refunded
	OutcomePlayer2TimedOut
)

var outcomeNames = [...]string{"None", "Tie", "Player1Wins", "Player2Wins", "Player1TimedOut", "Player2TimedOut"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "Outcome(" + strconv.Itoa(int(o)) + ")"
}

func parseName(names []string, text []byte) (uint8, bool) {
	for i, name := range names {
		if strings.EqualFold(string(text), name) {
			return uint8(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the move name
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts what ParseMove accepts plus "None"
func (m *Move) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), moveNames[MoveNone]) {
		*m = MoveNone
		return nil
	}
	v, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText encodes the phase name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	v, ok := parseName(phaseNames[:], text)
	if !ok {
		return ErrInvalidParam
	}
	*p = Phase(v)
	return nil
}

// MarshalText encodes the outcome name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name
func (o *Outcome) UnmarshalText(text []byte) error {
	v, ok := parseName(outcomeNames[:], text)
	if !ok {
		return ErrInvalidParam
	}
	*o = Outcome(v)
	return nil
}
