// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Session is the authoritative state of one wager, owned by the executor.
//
// Player2 stays the zero address until somebody joins. Opponent, when set at creation,
// is the only address allowed to join. Escrowed is the amount the executor still holds
// for the session and reads zero once the session is terminal.
type Session struct {
	ID          common.Address  `json:"id"`
	Player1     common.Address  `json:"player1"`
	Player2     common.Address  `json:"player2"`
	Opponent    common.Address  `json:"opponent"`
	Commitment  Commitment      `json:"commitment"`
	Stake       decimal.Decimal `json:"stake"`
	Escrowed    decimal.Decimal `json:"escrowed"`
	Player1Move Move            `json:"player1Move"`
	Player2Move Move            `json:"player2Move"`
	CreatedAt   int64           `json:"createdAt"`
	LastAction  int64           `json:"lastAction"`
	Timeout     int64           `json:"timeout"`
	Phase       Phase           `json:"phase"`
	Outcome     Outcome         `json:"outcome"`
	Winner      common.Address  `json:"winner"`
}

// Joined reports whether player2 is known
func (s *Session) Joined() bool {
	return s.Player2 != (common.Address{})
}

// HasOpponent reports whether player1 designated who may join
func (s *Session) HasOpponent() bool {
	return s.Opponent != (common.Address{})
}

// IsParticipant reports whether addr is player1 or a known player2
func (s *Session) IsParticipant(addr common.Address) bool {
	if addr == (common.Address{}) {
		return false
	}
	return addr == s.Player1 || (s.Joined() && addr == s.Player2)
}

// LastActionTime returns LastAction as a time
func (s *Session) LastActionTime() time.Time {
	return time.Unix(s.LastAction, 0)
}

// Window returns the timeout window
func (s *Session) Window() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// Deadline is the moment after which the stalled party can be timed out
func (s *Session) Deadline() time.Time {
	return s.LastActionTime().Add(s.Window())
}

// Pot is the total amount at stake once both players are in
func (s *Session) Pot() decimal.Decimal {
	return s.Stake.Mul(decimal.NewFromInt(2))
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// sessionRLP is the storage layout, rlp has no signed ints and no decimals
type sessionRLP struct {
	ID          common.Address
	Player1     common.Address
	Player2     common.Address
	Opponent    common.Address
	Commitment  Commitment
	Stake       string
	Escrowed    string
	Player1Move uint8
	Player2Move uint8
	CreatedAt   uint64
	LastAction  uint64
	Timeout     uint64
	Phase       uint8
	Outcome     uint8
	Winner      common.Address
}

// EncodeSession serializes s for the KV store
func EncodeSession(s *Session) ([]byte, error) {
	if s.CreatedAt < 0 || s.LastAction < 0 || s.Timeout < 0 {
		return nil, errors.Wrap(ErrMarshal, "negative time field")
	}
	enc := &sessionRLP{
		ID:          s.ID,
		Player1:     s.Player1,
		Player2:     s.Player2,
		Opponent:    s.Opponent,
		Commitment:  s.Commitment,
		Stake:       s.Stake.String(),
		Escrowed:    s.Escrowed.String(),
		Player1Move: uint8(s.Player1Move),
		Player2Move: uint8(s.Player2Move),
		CreatedAt:   uint64(s.CreatedAt),
		LastAction:  uint64(s.LastAction),
		Timeout:     uint64(s.Timeout),
		Phase:       uint8(s.Phase),
		Outcome:     uint8(s.Outcome),
		Winner:      s.Winner,
	}
	data, err := rlp.EncodeToBytes(enc)
	if err != nil {
		return nil, errors.Wrap(ErrMarshal, err.Error())
	}
	return data, nil
}

// DecodeSession is the inverse of EncodeSession
func DecodeSession(data []byte) (*Session, error) {
	var dec sessionRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, errors.Wrap(ErrUnmarshal, err.Error())
	}
	stake, err := decimal.NewFromString(dec.Stake)
	if err != nil {
		return nil, errors.Wrap(ErrUnmarshal, "stake: "+err.Error())
	}
	escrowed, err := decimal.NewFromString(dec.Escrowed)
	if err != nil {
		return nil, errors.Wrap(ErrUnmarshal, "escrowed: "+err.Error())
	}
	return &Session{
		ID:          dec.ID,
		Player1:     dec.Player1,
		Player2:     dec.Player2,
		Opponent:    dec.Opponent,
		Commitment:  dec.Commitment,
		Stake:       stake,
		Escrowed:    escrowed,
		Player1Move: Move(dec.Player1Move),
		Player2Move: Move(dec.Player2Move),
		CreatedAt:   int64(dec.CreatedAt),
		LastAction:  int64(dec.LastAction),
		Timeout:     int64(dec.Timeout),
		Phase:       Phase(dec.Phase),
		Outcome:     Outcome(dec.Outcome),
		Winner:      dec.Winner,
	}, nil
}
