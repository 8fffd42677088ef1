// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package client 是展示层调用的对局接口

Player 负责生成并保存本地秘密, 把承诺和揭示发送给账本, 并保证同一个玩家对同一局
同一时间只有一个状态转换在途。账本可以是进程内的 executor 也可以是 rpc.Client。
*/
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/33cn/rpsls/common/commit"
	"github.com/33cn/rpsls/game"
	"github.com/33cn/rpsls/types"
	"github.com/33cn/rpsls/wallet/secret"
	"github.com/ethereum/go-ethereum/common"
	log15 "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var log = log15.New("module", "client")

// Ledger is the authoritative session store the player talks to
type Ledger interface {
	CreateSession(ctx context.Context, from common.Address, c types.Commitment, stake decimal.Decimal, opponent common.Address) (common.Address, error)
	JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error
	RevealSession(ctx context.Context, from, id common.Address, move types.Move, salt types.Salt) error
	ClaimTimeout(ctx context.Context, from, id common.Address) error
	Session(ctx context.Context, id common.Address) (*types.Session, error)
	ListSessions(ctx context.Context, addr common.Address) ([]*types.Session, error)
	Balance(ctx context.Context, addr common.Address) (decimal.Decimal, error)
}

// SecretStore keeps the (move, salt) of the local player1.
// A new secret is staged until the ledger confirms its session, then promoted to live.
type SecretStore interface {
	Stage(owner common.Address, move types.Move, salt types.Salt) error
	Promote(owner common.Address) error
	Discard(owner common.Address) error
	Retrieve(owner common.Address) (types.Move, types.Salt, error)
	RetrieveStaged(owner common.Address) (types.Move, types.Salt, error)
	Consume(owner common.Address) error
}

// OutcomeUnknownError is returned when a transition was sent but its answer was lost.
// Observed is the session as re-read from the ledger afterwards, nil if that failed too.
type OutcomeUnknownError struct {
	Op       string
	ID       common.Address
	Observed *types.Session
	Err      error
}

func (e *OutcomeUnknownError) Error() string {
	if e.Observed == nil && e.ID == (common.Address{}) {
		return fmt.Sprintf("%s: outcome unknown, no session found: %v", e.Op, e.Err)
	}
	if e.Observed == nil {
		return fmt.Sprintf("%s %s: outcome unknown: %v", e.Op, e.ID.Hex(), e.Err)
	}
	return fmt.Sprintf("%s %s: outcome unknown, session is %s: %v", e.Op, e.ID.Hex(), e.Observed.Phase, e.Err)
}

// Unwrap returns the transport error
func (e *OutcomeUnknownError) Unwrap() error { return e.Err }

// Result of a solved or claimed session
type Result struct {
	Session   *types.Session
	Narration string
}

// Status is a session together with its advisory countdown
type Status struct {
	Session   *types.Session
	Remaining time.Duration
	Expired   bool
}

type flightKey struct {
	id, actor common.Address
}

// Player 对局客户端
type Player struct {
	ledger  Ledger
	secrets SecretStore
	min     decimal.Decimal
	max     decimal.Decimal
	now     func() time.Time
	tick    time.Duration

	mu       sync.Mutex
	inflight map[flightKey]string
}

// Option configures a Player
type Option func(*Player)

// WithStakeBounds overrides the accepted stake range of CreateGame
func WithStakeBounds(min, max decimal.Decimal) Option {
	return func(p *Player) {
		p.min, p.max = min, max
	}
}

// WithClock sets the clock of Status and Countdown
func WithClock(now func() time.Time) Option {
	return func(p *Player) {
		p.now = now
	}
}

// WithTick sets the countdown interval
func WithTick(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tick = d
		}
	}
}

// NewPlayer player over ledger, keeping secrets in secrets
func NewPlayer(ledger Ledger, secrets SecretStore, opts ...Option) *Player {
	p := &Player{
		ledger:   ledger,
		secrets:  secrets,
		min:      types.DefaultMinStake,
		max:      types.DefaultMaxStake,
		now:      types.Now,
		tick:     time.Second,
		inflight: make(map[flightKey]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateGame commits to move and opens a session. The new secret is staged and
// only replaces the live one once the ledger has the session, so a refused create
// leaves the secret of an earlier game in place.
func (p *Player) CreateGame(ctx context.Context, from common.Address, move types.Move,
	stake decimal.Decimal, opponent common.Address) (common.Address, error) {
	if !move.Valid() {
		return common.Address{}, types.ErrInvalidMove
	}
	if stake.LessThan(p.min) || stake.GreaterThan(p.max) {
		return common.Address{}, errors.Wrapf(types.ErrInvalidStake, "stake %s not in [%s, %s]", stake, p.min, p.max)
	}
	if opponent == from {
		return common.Address{}, types.ErrInvalidAddress
	}
	done, err := p.begin(common.Address{}, from, "create")
	if err != nil {
		return common.Address{}, err
	}
	defer done()

	salt, err := secret.GenerateSalt()
	if err != nil {
		return common.Address{}, err
	}
	c, err := commit.Commit(move, salt)
	if err != nil {
		return common.Address{}, err
	}
	if err := p.secrets.Stage(from, move, salt); err != nil {
		log.Error("CreateGame stage secret", "from", from, "err", err)
		return common.Address{}, err
	}
	id, err := p.ledger.CreateSession(ctx, from, c, stake, opponent)
	if err != nil {
		if errors.Is(err, types.ErrTransport) {
			return common.Address{}, p.lostCreate(ctx, from, c, err)
		}
		log.Error("CreateGame", "from", from, "err", err)
		if derr := p.secrets.Discard(from); derr != nil {
			log.Error("CreateGame discard secret", "from", from, "err", derr)
		}
		return common.Address{}, err
	}
	p.promote(from)
	log.Info("CreateGame", "from", from, "id", id, "stake", stake, "opponent", opponent)
	return id, nil
}

// lostCreate looks for the session of commitment c after the create answer was lost.
// The staged secret is promoted if the session exists and kept staged otherwise.
func (p *Player) lostCreate(ctx context.Context, from common.Address, c types.Commitment, err error) error {
	u := &OutcomeUnknownError{Op: "create", Err: err}
	list, lerr := p.ledger.ListSessions(ctx, from)
	if lerr != nil {
		log.Error("create re-read", "from", from, "err", lerr)
		return u
	}
	for _, s := range list {
		if s.Player1 == from && s.Commitment == c {
			u.ID, u.Observed = s.ID, s
			p.promote(from)
			break
		}
	}
	log.Warn("create", "from", from, "err", u)
	return u
}

// Join plays move against session id, matching its stake
func (p *Player) Join(ctx context.Context, from, id common.Address, move types.Move) (*types.Session, error) {
	if !move.Valid() {
		return nil, types.ErrInvalidMove
	}
	done, err := p.begin(id, from, "join")
	if err != nil {
		return nil, err
	}
	defer done()

	s, err := p.ledger.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.ledger.JoinSession(ctx, from, id, move, s.Stake); err != nil {
		return nil, p.unknown(ctx, "join", id, err)
	}
	log.Info("Join", "from", from, "id", id, "move", move)
	return p.ledger.Session(ctx, id)
}

// Solve reveals the stored secret of from for session id
func (p *Player) Solve(ctx context.Context, from, id common.Address) (*Result, error) {
	done, err := p.begin(id, from, "solve")
	if err != nil {
		return nil, err
	}
	defer done()

	s, err := p.ledger.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	move, salt, staged, err := p.secretOf(from, s)
	if err != nil {
		return nil, err
	}
	if err := p.ledger.RevealSession(ctx, from, id, move, salt); err != nil {
		err = p.unknown(ctx, "solve", id, err)
		if u, ok := err.(*OutcomeUnknownError); ok && u.Observed != nil && u.Observed.Player1Move == move {
			p.consume(from, staged)
		}
		return nil, err
	}
	p.consume(from, staged)
	return p.result(ctx, id)
}

// ClaimTimeout ends session id after the counterparty stalled
func (p *Player) ClaimTimeout(ctx context.Context, from, id common.Address) (*Result, error) {
	done, err := p.begin(id, from, "timeout")
	if err != nil {
		return nil, err
	}
	defer done()

	if err := p.ledger.ClaimTimeout(ctx, from, id); err != nil {
		return nil, p.unknown(ctx, "timeout", id, err)
	}
	return p.result(ctx, id)
}

// Status reads session id and its countdown
func (p *Player) Status(ctx context.Context, id common.Address) (*Status, error) {
	s, err := p.ledger.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.status(s), nil
}

// Balance of addr
func (p *Player) Balance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	return p.ledger.Balance(ctx, addr)
}

func (p *Player) status(s *types.Session) *Status {
	st := &Status{Session: s}
	if s.Phase.Terminal() {
		return st
	}
	now := p.now()
	st.Remaining = game.Remaining(s.LastActionTime(), s.Window(), now)
	st.Expired = game.Expired(s.LastActionTime(), s.Window(), now)
	return st
}

func (p *Player) result(ctx context.Context, id common.Address) (*Result, error) {
	s, err := p.ledger.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Session: s, Narration: Describe(s)}, nil
}

// secretOf finds the secret of from that opens s, live first, then staged.
// 本地秘密属于另一局时不发送
func (p *Player) secretOf(from common.Address, s *types.Session) (types.Move, types.Salt, bool, error) {
	move, salt, err := p.secrets.Retrieve(from)
	if err == nil && commit.Verify(s.Commitment, move, salt) {
		return move, salt, false, nil
	}
	smove, ssalt, serr := p.secrets.RetrieveStaged(from)
	if serr == nil && commit.Verify(s.Commitment, smove, ssalt) {
		return smove, ssalt, true, nil
	}
	if err != nil {
		return types.MoveNone, salt, false, err
	}
	return types.MoveNone, salt, false, errors.Wrapf(types.ErrCommitmentMismatch, "stored secret of %s does not open session %s", from.Hex(), s.ID.Hex())
}

func (p *Player) promote(from common.Address) {
	if err := p.secrets.Promote(from); err != nil {
		log.Error("promote secret", "from", from, "err", err)
	}
}

func (p *Player) consume(from common.Address, staged bool) {
	var err error
	if staged {
		err = p.secrets.Discard(from)
	} else {
		err = p.secrets.Consume(from)
	}
	if err != nil {
		log.Error("consume secret", "from", from, "staged", staged, "err", err)
	}
}

// unknown re-reads the session after a transport failure instead of retrying
func (p *Player) unknown(ctx context.Context, op string, id common.Address, err error) error {
	if !errors.Is(err, types.ErrTransport) {
		return err
	}
	u := &OutcomeUnknownError{Op: op, ID: id, Err: err}
	s, rerr := p.ledger.Session(ctx, id)
	if rerr != nil {
		log.Error(op+" re-read", "id", id, "err", rerr)
	} else {
		u.Observed = s
	}
	log.Warn(op, "id", id, "err", u)
	return u
}

func (p *Player) begin(id, actor common.Address, op string) (func(), error) {
	key := flightKey{id: id, actor: actor}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pending, ok := p.inflight[key]; ok {
		return nil, errors.Wrapf(types.ErrTransitionPending, "%s already in flight", pending)
	}
	p.inflight[key] = op
	return func() {
		p.mu.Lock()
		delete(p.inflight, key)
		p.mu.Unlock()
	}, nil
}

// Describe tells what happened to a session in one line
func Describe(s *types.Session) string {
	switch s.Outcome {
	case types.OutcomeTie:
		return fmt.Sprintf("%s: tie, both stakes of %s refunded", game.Narrate(s.Player1Move, s.Player2Move), s.Stake)
	case types.OutcomePlayer1Wins, types.OutcomePlayer2Wins:
		return fmt.Sprintf("%s: %s wins %s", game.Narrate(s.Player1Move, s.Player2Move), s.Winner.Hex(), s.Pot())
	case types.OutcomePlayer1TimedOut:
		return fmt.Sprintf("player1 did not reveal in time: %s wins %s", s.Winner.Hex(), s.Pot())
	case types.OutcomePlayer2TimedOut:
		return fmt.Sprintf("nobody joined in time: %s refunded to %s", s.Stake, s.Player1.Hex())
	}
	return fmt.Sprintf("session is %s", s.Phase)
}
