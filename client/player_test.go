// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"sync"
	"testing"
	"time"

	dbm "github.com/33cn/rpsls/common/db"
	"github.com/33cn/rpsls/executor"
	"github.com/33cn/rpsls/rpc"
	"github.com/33cn/rpsls/types"
	"github.com/33cn/rpsls/wallet/secret"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	carol = common.HexToAddress("0x3000000000000000000000000000000000000003")

	one = decimal.NewFromInt(1)
	ctx = context.Background()
)

var (
	_ Ledger      = (*executor.Executor)(nil)
	_ Ledger      = (*rpc.Client)(nil)
	_ SecretStore = (*secret.Store)(nil)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// plainEncryptor seals nothing, the tests only care about the flow
type plainEncryptor struct{}

func (plainEncryptor) EncryptionPublicKey(owner common.Address) ([32]byte, error) {
	var pub [32]byte
	copy(pub[:], owner.Bytes())
	return pub, nil
}

func (plainEncryptor) Encrypt(pub [32]byte, plaintext []byte) ([]byte, error) {
	return append([]byte{}, plaintext...), nil
}

func (plainEncryptor) Decrypt(owner common.Address, ciphertext []byte) ([]byte, error) {
	return append([]byte{}, ciphertext...), nil
}

// lossyLedger executes calls but can drop the answer of the next transition
type lossyLedger struct {
	*executor.Executor
	mu   sync.Mutex
	drop bool
	sent int
}

func (l *lossyLedger) dropNext() {
	l.mu.Lock()
	l.drop = true
	l.mu.Unlock()
}

func (l *lossyLedger) lost(err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent++
	if err == nil && l.drop {
		l.drop = false
		return errors.Wrap(types.ErrTransport, "connection reset")
	}
	return err
}

func (l *lossyLedger) CreateSession(ctx context.Context, from common.Address, c types.Commitment, stake decimal.Decimal, opponent common.Address) (common.Address, error) {
	id, err := l.Executor.CreateSession(ctx, from, c, stake, opponent)
	if err = l.lost(err); err != nil {
		return common.Address{}, err
	}
	return id, nil
}

// cutLedger loses the next create before it reaches the executor
type cutLedger struct {
	*lossyLedger
}

func (l *cutLedger) CreateSession(ctx context.Context, from common.Address, c types.Commitment, stake decimal.Decimal, opponent common.Address) (common.Address, error) {
	return common.Address{}, errors.Wrap(types.ErrTransport, "connection refused")
}

func (l *lossyLedger) JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error {
	return l.lost(l.Executor.JoinSession(ctx, from, id, move, stake))
}

func (l *lossyLedger) RevealSession(ctx context.Context, from, id common.Address, move types.Move, salt types.Salt) error {
	return l.lost(l.Executor.RevealSession(ctx, from, id, move, salt))
}

func (l *lossyLedger) ClaimTimeout(ctx context.Context, from, id common.Address) error {
	return l.lost(l.Executor.ClaimTimeout(ctx, from, id))
}

type fixture struct {
	ledger  *lossyLedger
	secrets *secret.Store
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	store, err := dbm.NewGoMemDB("ledger", "", 0)
	require.NoError(t, err)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	e := executor.New(store, executor.WithClock(clock.Now))
	require.NoError(t, e.Genesis([]*types.GenesisAlloc{
		{Addr: alice.Hex(), Amount: "10"},
		{Addr: bob.Hex(), Amount: "10"},
	}))
	wallet, err := dbm.NewGoMemDB("wallet", "", 0)
	require.NoError(t, err)
	return &fixture{
		ledger:  &lossyLedger{Executor: e},
		secrets: secret.New(wallet, plainEncryptor{}),
		clock:   clock,
	}
}

func (f *fixture) player(opts ...Option) *Player {
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	return NewPlayer(f.ledger, f.secrets, opts...)
}

func TestPlayRockAgainstScissors(t *testing.T) {
	f := newFixture(t)
	p1, p2 := f.player(), f.player()

	id, err := p1.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	s, err := p2.Join(ctx, bob, id, types.Scissors)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseAwaitingReveal, s.Phase)

	res, err := p1.Solve(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer1Wins, res.Session.Outcome)
	assert.Equal(t, "Rock crushes Scissors: "+alice.Hex()+" wins 2", res.Narration)

	_, _, err = f.secrets.Retrieve(alice)
	assert.Equal(t, types.ErrSecretNotFound, err)
	b, err := p1.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "11", b.String())
}

func TestSpockAgainstPaper(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	id, err := p.CreateGame(ctx, alice, types.Paper, one, bob)
	require.NoError(t, err)

	_, err = p.Join(ctx, carol, id, types.Rock)
	assert.Equal(t, types.ErrUnauthorized, err)
	_, err = p.Join(ctx, bob, id, types.Spock)
	require.NoError(t, err)

	res, err := p.Solve(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer2Wins, res.Session.Outcome)
	assert.Equal(t, bob, res.Session.Winner)
	assert.Equal(t, "Spock beats Paper: "+bob.Hex()+" wins 2", res.Narration)
}

func TestClaimAfterStall(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	id, err := p.CreateGame(ctx, alice, types.Lizard, one, common.Address{})
	require.NoError(t, err)
	_, err = p.Join(ctx, bob, id, types.Rock)
	require.NoError(t, err)

	f.clock.Add(4 * time.Minute)
	st, err := p.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, st.Remaining)
	assert.False(t, st.Expired)
	_, err = p.ClaimTimeout(ctx, bob, id)
	assert.Equal(t, types.ErrDeadlineNotReached, err)

	f.clock.Add(time.Minute)
	st, err = p.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.Expired)

	res, err := p.ClaimTimeout(ctx, bob, id)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer1TimedOut, res.Session.Outcome)
	assert.Equal(t, "player1 did not reveal in time: "+bob.Hex()+" wins 2", res.Narration)

	st, err = p.Status(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, st.Remaining)
	assert.False(t, st.Expired)
}

func TestNobodyJoined(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	id, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	f.clock.Add(5 * time.Minute)
	res, err := p.ClaimTimeout(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseCancelled, res.Session.Phase)
	assert.Equal(t, "nobody joined in time: 1 refunded to "+alice.Hex(), res.Narration)
}

func TestCreateChecks(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	_, err := p.CreateGame(ctx, alice, types.MoveNone, one, common.Address{})
	assert.Equal(t, types.ErrInvalidMove, err)
	_, err = p.CreateGame(ctx, alice, types.Rock, decimal.NewFromInt(11), common.Address{})
	assert.True(t, errors.Is(err, types.ErrInvalidStake))
	_, err = p.CreateGame(ctx, alice, types.Rock, decimal.RequireFromString("0.0001"), common.Address{})
	assert.True(t, errors.Is(err, types.ErrInvalidStake))
	_, err = p.CreateGame(ctx, alice, types.Rock, one, alice)
	assert.Equal(t, types.ErrInvalidAddress, err)

	p = f.player(WithStakeBounds(decimal.NewFromInt(2), decimal.NewFromInt(3)))
	_, err = p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	assert.True(t, errors.Is(err, types.ErrInvalidStake))
	_, err = p.CreateGame(ctx, carol, types.Rock, decimal.NewFromInt(2), common.Address{})
	assert.Equal(t, types.ErrNoBalance, err)
}

func TestLostRevealAnswer(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	id, err := p.CreateGame(ctx, alice, types.Scissors, one, common.Address{})
	require.NoError(t, err)
	_, err = p.Join(ctx, bob, id, types.Paper)
	require.NoError(t, err)

	f.ledger.dropNext()
	_, err = p.Solve(ctx, alice, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTransport))
	u, ok := err.(*OutcomeUnknownError)
	require.True(t, ok)
	require.NotNil(t, u.Observed)
	assert.Equal(t, types.PhaseResolved, u.Observed.Phase)
	assert.Equal(t, types.OutcomePlayer1Wins, u.Observed.Outcome)

	// the reveal landed, the secret is gone
	_, _, err = f.secrets.Retrieve(alice)
	assert.Equal(t, types.ErrSecretNotFound, err)
}

func TestLostJoinAnswer(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	id, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	sent := f.ledger.sent
	f.ledger.dropNext()
	_, err = p.Join(ctx, bob, id, types.Paper)
	u, ok := err.(*OutcomeUnknownError)
	require.True(t, ok)
	assert.Equal(t, types.PhaseAwaitingReveal, u.Observed.Phase)
	assert.Contains(t, u.Error(), "AwaitingReveal")

	// no retry happened
	assert.Equal(t, sent+1, f.ledger.sent)
}

func TestSolveWithForeignSecret(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	first, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	_, err = p.Join(ctx, bob, first, types.Paper)
	require.NoError(t, err)
	// a second game replaces the live secret of alice
	_, err = p.CreateGame(ctx, alice, types.Spock, one, common.Address{})
	require.NoError(t, err)

	sent := f.ledger.sent
	_, err = p.Solve(ctx, alice, first)
	assert.True(t, errors.Is(err, types.ErrCommitmentMismatch))
	assert.Equal(t, sent, f.ledger.sent)
	s, err := f.ledger.Session(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseAwaitingReveal, s.Phase)
}

func TestSolveWithoutSecret(t *testing.T) {
	f := newFixture(t)
	id, err := f.player().CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)

	// another device of alice has no secret
	wallet, err := dbm.NewGoMemDB("other", "", 0)
	require.NoError(t, err)
	p := NewPlayer(f.ledger, secret.New(wallet, plainEncryptor{}))
	_, err = p.Solve(ctx, alice, id)
	assert.Equal(t, types.ErrSecretNotFound, err)
}

func TestRefusedCreateKeepsSecret(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	first, err := p.CreateGame(ctx, alice, types.Rock, decimal.NewFromInt(6), bob)
	require.NoError(t, err)
	_, err = p.Join(ctx, bob, first, types.Scissors)
	require.NoError(t, err)

	// 余额只剩 4
	_, err = p.CreateGame(ctx, alice, types.Paper, decimal.NewFromInt(5), bob)
	assert.Equal(t, types.ErrNoBalance, err)
	_, _, err = f.secrets.RetrieveStaged(alice)
	assert.Equal(t, types.ErrSecretNotFound, err)

	res, err := p.Solve(ctx, alice, first)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer1Wins, res.Session.Outcome)
	b, err := p.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "16", b.String())
}

func TestLostCreateAnswer(t *testing.T) {
	f := newFixture(t)
	p := f.player()
	first, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)

	f.ledger.dropNext()
	_, err = p.CreateGame(ctx, alice, types.Rock, one, bob)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTransport))
	u, ok := err.(*OutcomeUnknownError)
	require.True(t, ok)
	require.NotNil(t, u.Observed)
	assert.Equal(t, types.PhaseCreated, u.Observed.Phase)
	assert.Equal(t, bob, u.Observed.Opponent)
	assert.NotEqual(t, first, u.ID)

	// the session exists, its secret is live
	_, err = p.Join(ctx, bob, u.ID, types.Scissors)
	require.NoError(t, err)
	res, err := p.Solve(ctx, alice, u.ID)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomePlayer1Wins, res.Session.Outcome)
	_, _, err = f.secrets.RetrieveStaged(alice)
	assert.Equal(t, types.ErrSecretNotFound, err)
}

func TestCreateNeverArrived(t *testing.T) {
	f := newFixture(t)
	first, err := f.player().CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	_, err = f.player().Join(ctx, bob, first, types.Scissors)
	require.NoError(t, err)

	p := NewPlayer(&cutLedger{lossyLedger: f.ledger}, f.secrets, WithClock(f.clock.Now))
	_, err = p.CreateGame(ctx, alice, types.Spock, one, common.Address{})
	u, ok := err.(*OutcomeUnknownError)
	require.True(t, ok)
	assert.Nil(t, u.Observed)
	assert.Contains(t, u.Error(), "no session found")

	// the live secret still opens the first game
	res, err := f.player().Solve(ctx, alice, first)
	require.NoError(t, err)
	assert.Equal(t, "Rock crushes Scissors: "+alice.Hex()+" wins 2", res.Narration)
}

// blockingLedger holds JoinSession until release is closed
type blockingLedger struct {
	*lossyLedger
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLedger) JoinSession(ctx context.Context, from, id common.Address, move types.Move, stake decimal.Decimal) error {
	l.entered <- struct{}{}
	<-l.release
	return l.lossyLedger.JoinSession(ctx, from, id, move, stake)
}

func TestTransitionPending(t *testing.T) {
	f := newFixture(t)
	id, err := f.player().CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)

	bl := &blockingLedger{lossyLedger: f.ledger, entered: make(chan struct{}, 1), release: make(chan struct{})}
	p := NewPlayer(bl, f.secrets, WithClock(f.clock.Now))
	errc := make(chan error, 1)
	go func() {
		_, err := p.Join(ctx, bob, id, types.Paper)
		errc <- err
	}()
	<-bl.entered

	_, err = p.Join(ctx, bob, id, types.Scissors)
	assert.True(t, errors.Is(err, types.ErrTransitionPending))
	_, err = p.ClaimTimeout(ctx, alice, id)
	assert.Equal(t, types.ErrDeadlineNotReached, err)

	close(bl.release)
	require.NoError(t, <-errc)
	s, err := p.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.Paper, s.Session.Player2Move)

	// the guard is released afterwards
	_, err = p.Join(ctx, bob, id, types.Scissors)
	assert.Equal(t, types.ErrAlreadyJoined, err)
}

func TestCountdown(t *testing.T) {
	f := newFixture(t)
	p := f.player(WithTick(time.Millisecond))
	id, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)
	f.clock.Add(5*time.Minute - 2*time.Second)

	ch, err := p.Countdown(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, <-ch)
	f.clock.Add(2 * time.Second)

	var last time.Duration = -1
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case v, ok := <-ch:
			if !ok {
				done = true
				break
			}
			last = v
		case <-timeout:
			t.Fatal("countdown did not stop")
		}
	}
	assert.Equal(t, time.Duration(0), last)
}

func TestCountdownStops(t *testing.T) {
	f := newFixture(t)
	p := f.player(WithTick(time.Millisecond))
	id, err := p.CreateGame(ctx, alice, types.Rock, one, common.Address{})
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	ch, err := p.Countdown(cctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, <-ch)
	cancel()
	for range ch {
	}

	f.clock.Add(5 * time.Minute)
	_, err = p.ClaimTimeout(ctx, alice, id)
	require.NoError(t, err)
	ch, err = p.Countdown(ctx, id)
	require.NoError(t, err)
	_, ok := <-ch
	assert.False(t, ok)

	_, err = p.Countdown(ctx, carol)
	assert.Equal(t, types.ErrSessionNotFound, err)
}
