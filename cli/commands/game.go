// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/33cn/rpsls/client"
	"github.com/33cn/rpsls/rpc/jsonclient"
	rpctypes "github.com/33cn/rpsls/rpc/types"
	"github.com/33cn/rpsls/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// GameCmd game command
func GameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Play Rock Paper Scissors Lizard Spock",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		CreateGameCmd(),
		JoinGameCmd(),
		SolveGameCmd(),
		TimeoutGameCmd(),
		StatusGameCmd(),
		ListGameCmd(),
		CountdownGameCmd(),
	)
	return cmd
}

// CreateGameCmd commit to a move and open a session
func CreateGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Commit to a move and open a session",
		Run:   createGame,
	}
	cmd.Flags().StringP("from", "f", "", "player1 address")
	cmd.MarkFlagRequired("from")
	cmd.Flags().StringP("move", "m", "", "Rock, Paper, Scissors, Lizard or Spock")
	cmd.MarkFlagRequired("move")
	cmd.Flags().StringP("stake", "s", "", "stake of each player")
	cmd.MarkFlagRequired("stake")
	cmd.Flags().StringP("opponent", "o", "", "only this address may join")
	return cmd
}

func createGame(cmd *cobra.Command, args []string) {
	from, err := addrFlag(cmd, "from")
	if err != nil {
		fail(err)
		return
	}
	opponent, err := addrFlag(cmd, "opponent")
	if err != nil {
		fail(err)
		return
	}
	moveStr, _ := cmd.Flags().GetString("move")
	move, err := types.ParseMove(moveStr)
	if err != nil {
		fail(err)
		return
	}
	stakeStr, _ := cmd.Flags().GetString("stake")
	stake, err := decimal.NewFromString(stakeStr)
	if err != nil {
		fail(types.ErrInvalidStake)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	id, err := p.CreateGame(context.Background(), from, move, stake, opponent)
	if err != nil {
		fail(err)
		return
	}
	fmt.Println(id.Hex())
}

func addIDFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("gameID", "g", "", "session id")
	cmd.MarkFlagRequired("gameID")
}

func addFromFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("from", "f", "", "player address")
	cmd.MarkFlagRequired("from")
}

// JoinGameCmd join a session
func JoinGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a session with a move, matching its stake",
		Run:   joinGame,
	}
	addFromFlag(cmd)
	addIDFlag(cmd)
	cmd.Flags().StringP("move", "m", "", "Rock, Paper, Scissors, Lizard or Spock")
	cmd.MarkFlagRequired("move")
	return cmd
}

func joinGame(cmd *cobra.Command, args []string) {
	from, err := addrFlag(cmd, "from")
	if err != nil {
		fail(err)
		return
	}
	id, err := addrFlag(cmd, "gameID")
	if err != nil {
		fail(err)
		return
	}
	moveStr, _ := cmd.Flags().GetString("move")
	move, err := types.ParseMove(moveStr)
	if err != nil {
		fail(err)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	s, err := p.Join(context.Background(), from, id, move)
	if err != nil {
		fail(err)
		return
	}
	printJSON(s)
}

// SolveGameCmd reveal the stored move
func SolveGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Reveal the stored move and settle the session",
		Run:   solveGame,
	}
	addFromFlag(cmd)
	addIDFlag(cmd)
	addPasswordFlag(cmd)
	return cmd
}

func solveGame(cmd *cobra.Command, args []string) {
	from, err := addrFlag(cmd, "from")
	if err != nil {
		fail(err)
		return
	}
	id, err := addrFlag(cmd, "gameID")
	if err != nil {
		fail(err)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	if err := w.unlock(cmd); err != nil {
		fail(err)
		return
	}
	res, err := p.Solve(context.Background(), from, id)
	if err != nil {
		fail(err)
		return
	}
	fmt.Println(res.Narration)
}

// TimeoutGameCmd claim a stalled session
func TimeoutGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeout",
		Short: "End a session whose counterparty stalled",
		Run:   timeoutGame,
	}
	addFromFlag(cmd)
	addIDFlag(cmd)
	return cmd
}

func timeoutGame(cmd *cobra.Command, args []string) {
	from, err := addrFlag(cmd, "from")
	if err != nil {
		fail(err)
		return
	}
	id, err := addrFlag(cmd, "gameID")
	if err != nil {
		fail(err)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	res, err := p.ClaimTimeout(context.Background(), from, id)
	if err != nil {
		fail(err)
		return
	}
	fmt.Println(res.Narration)
}

type statusView struct {
	*types.Session
	Remaining string `json:"remaining"`
	Expired   bool   `json:"expired"`
	Result    string `json:"result,omitempty"`
}

// StatusGameCmd show a session
func StatusGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a session and its countdown",
		Run:   statusGame,
	}
	addIDFlag(cmd)
	return cmd
}

func statusGame(cmd *cobra.Command, args []string) {
	id, err := addrFlag(cmd, "gameID")
	if err != nil {
		fail(err)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	st, err := p.Status(context.Background(), id)
	if err != nil {
		fail(err)
		return
	}
	view := &statusView{Session: st.Session, Remaining: st.Remaining.String(), Expired: st.Expired}
	if st.Session.Phase.Terminal() {
		view.Result = client.Describe(st.Session)
	}
	printJSON(view)
}

type sessionItem struct {
	ID    string `json:"id"`
	Phase string `json:"phase"`
	Stake string `json:"stake"`
	Role  string `json:"role"`
}

// ListGameCmd list sessions of an address
func ListGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions an address created, joined or was invited to",
		Run:   listGame,
	}
	cmd.Flags().StringP("addr", "a", "", "address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func listGame(cmd *cobra.Command, args []string) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	addr, err := addrFlag(cmd, "addr")
	if err != nil {
		fail(err)
		return
	}
	var res rpctypes.ReplySessions
	ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rpsls.ListSessions", &rpctypes.ReqAddr{Addr: addr.Hex()}, &res)
	ctx.SetResultCb(func(arg interface{}) (interface{}, error) {
		reply := arg.(*rpctypes.ReplySessions)
		items := make([]*sessionItem, 0, len(reply.Sessions))
		for _, s := range reply.Sessions {
			role := "opponent"
			switch addr {
			case s.Player1:
				role = "player1"
			case s.Player2:
				role = "player2"
			}
			items = append(items, &sessionItem{ID: s.ID.Hex(), Phase: s.Phase.String(), Stake: s.Stake.String(), Role: role})
		}
		return items, nil
	})
	ctx.Run()
}

// CountdownGameCmd follow the timeout of a session
func CountdownGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Print the time left before the session can be timed out",
		Run:   countdownGame,
	}
	addIDFlag(cmd)
	return cmd
}

func countdownGame(cmd *cobra.Command, args []string) {
	id, err := addrFlag(cmd, "gameID")
	if err != nil {
		fail(err)
		return
	}
	p, w, err := newPlayer(cmd)
	if err != nil {
		fail(err)
		return
	}
	defer w.Close()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ch, err := p.Countdown(ctx, id)
	if err != nil {
		fail(err)
		return
	}
	for remaining := range ch {
		fmt.Println(remaining.Round(time.Second))
	}
}
