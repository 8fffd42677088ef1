// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package game

import (
	"testing"
	"time"

	"github.com/33cn/rpsls/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	T  = types.OutcomeTie
	P1 = types.OutcomePlayer1Wins
	P2 = types.OutcomePlayer2Wins
)

// 行: player1, 列: player2, 顺序 Rock Paper Scissors Lizard Spock
var table = [5][5]types.Outcome{
	{T, P2, P1, P2, P1},
	{P1, T, P2, P1, P2},
	{P2, P1, T, P2, P1},
	{P1, P2, P1, T, P2},
	{P2, P1, P2, P1, T},
}

func TestResolveTable(t *testing.T) {
	for i, a := range types.AllMoves {
		for j, b := range types.AllMoves {
			got, err := Resolve(a, b)
			require.NoError(t, err)
			assert.Equal(t, table[i][j], got, "%s vs %s", a, b)
		}
	}
}

func TestResolveInvalid(t *testing.T) {
	_, err := Resolve(types.MoveNone, types.Rock)
	assert.Equal(t, types.ErrInvalidMove, err)
	_, err = Resolve(types.Rock, types.MoveNone)
	assert.Equal(t, types.ErrInvalidMove, err)
	_, err = Resolve(types.Rock, types.Move(9))
	assert.Equal(t, types.ErrInvalidMove, err)
	assert.False(t, Beats(types.MoveNone, types.Rock))
}

// 每个出招恰好赢两个, 输两个
func TestBeatsTournament(t *testing.T) {
	for _, a := range types.AllMoves {
		wins, losses := 0, 0
		for _, b := range types.AllMoves {
			if Beats(a, b) {
				wins++
			}
			if Beats(b, a) {
				losses++
			}
			assert.False(t, Beats(a, b) && Beats(b, a))
		}
		assert.Equal(t, 2, wins, a.String())
		assert.Equal(t, 2, losses, a.String())
	}
}

// the ordinal rule agrees with the ten canonical verbs once Lizard and Spock trade ordinals
func TestBeatsCanonicalRelation(t *testing.T) {
	swap := func(m types.Move) types.Move {
		switch m {
		case types.Lizard:
			return types.Spock
		case types.Spock:
			return types.Lizard
		}
		return m
	}
	assert.Len(t, verbs, 10)
	for _, a := range types.AllMoves {
		for _, b := range types.AllMoves {
			_, canonical := Verb(swap(a), swap(b))
			assert.Equal(t, canonical, Beats(a, b), "%s vs %s", a, b)
		}
	}
	for _, a := range []types.Move{types.Rock, types.Paper, types.Scissors} {
		for _, b := range []types.Move{types.Rock, types.Paper, types.Scissors} {
			_, canonical := Verb(a, b)
			assert.Equal(t, canonical, Beats(a, b), "%s vs %s", a, b)
		}
	}
}

func TestNarrate(t *testing.T) {
	assert.Equal(t, "Rock crushes Scissors", Narrate(types.Rock, types.Scissors))
	assert.Equal(t, "Scissors cuts Paper", Narrate(types.Paper, types.Scissors))
	assert.Equal(t, "Spock beats Paper", Narrate(types.Paper, types.Spock))
	assert.Equal(t, "Lizard ties Lizard", Narrate(types.Lizard, types.Lizard))
	assert.Equal(t, "no result", Narrate(types.MoveNone, types.Rock))
}

func TestRemaining(t *testing.T) {
	last := time.Unix(1700000000, 0)
	w := 5 * time.Minute
	assert.Equal(t, w, Remaining(last, w, last))
	assert.Equal(t, time.Duration(0), Remaining(last, w, last.Add(w)))
	assert.Equal(t, time.Duration(0), Remaining(last, w, last.Add(w+time.Second)))
	assert.Equal(t, time.Second, Remaining(last, w, last.Add(w-time.Second)))

	assert.False(t, Expired(last, w, last.Add(w-time.Second)))
	assert.True(t, Expired(last, w, last.Add(w)))
	assert.True(t, Expired(last, w, last.Add(time.Hour)))
}

func TestTimeoutClock(t *testing.T) {
	c := NewTimeoutClock(0)
	assert.Equal(t, DefaultWindow, c.Window)
	c = NewTimeoutClock(time.Minute)
	last := time.Unix(100, 0)
	assert.Equal(t, time.Unix(160, 0), c.Deadline(last))
	assert.Equal(t, 30*time.Second, c.Remaining(last, time.Unix(130, 0)))
	assert.True(t, c.Expired(last, time.Unix(160, 0)))
}
