// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package game

import (
	"fmt"

	"github.com/33cn/rpsls/types"
)

// Resolve decides the outcome of player1's move a against player2's move b.
//
// Equal moves tie. Moves of the same parity are won by the lower ordinal,
// otherwise the higher ordinal wins.
func Resolve(a, b types.Move) (types.Outcome, error) {
	if !a.Valid() || !b.Valid() {
		return types.OutcomeNone, types.ErrInvalidMove
	}
	if a == b {
		return types.OutcomeTie, nil
	}
	if Beats(a, b) {
		return types.OutcomePlayer1Wins, nil
	}
	return types.OutcomePlayer2Wins, nil
}

// Beats reports whether a wins against b. Invalid or equal moves never win.
func Beats(a, b types.Move) bool {
	if !a.Valid() || !b.Valid() || a == b {
		return false
	}
	if a%2 == b%2 {
		return a < b
	}
	return a > b
}

type pair struct {
	winner, loser types.Move
}

// 经典规则的动词
var verbs = map[pair]string{
	{types.Scissors, types.Paper}:  "cuts",
	{types.Paper, types.Rock}:      "covers",
	{types.Rock, types.Lizard}:     "crushes",
	{types.Lizard, types.Spock}:    "poisons",
	{types.Spock, types.Scissors}:  "smashes",
	{types.Scissors, types.Lizard}: "decapitates",
	{types.Lizard, types.Paper}:    "eats",
	{types.Paper, types.Spock}:     "disproves",
	{types.Spock, types.Rock}:      "vaporizes",
	{types.Rock, types.Scissors}:   "crushes",
}

// Verb returns the canonical verb for winner against loser, if the pair has one
func Verb(winner, loser types.Move) (string, bool) {
	v, ok := verbs[pair{winner, loser}]
	return v, ok
}

// Narrate describes the result of a against b, e.g. "Scissors cuts Paper"
func Narrate(a, b types.Move) string {
	if !a.Valid() || !b.Valid() {
		return "no result"
	}
	if a == b {
		return fmt.Sprintf("%s ties %s", a, b)
	}
	winner, loser := a, b
	if !Beats(a, b) {
		winner, loser = b, a
	}
	verb, ok := Verb(winner, loser)
	if !ok {
		verb = "beats"
	}
	return fmt.Sprintf("%s %s %s", winner, verb, loser)
}
