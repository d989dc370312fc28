package client

import (
	"context"

	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

// BuyIn takes seat with amount chips. Rejections arrive on UpdatesCh as a
// buyInError message.
func (pc *PokerClient) BuyIn(ctx context.Context, seat int, amount int64) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgBuyIn, Seat: seat, Amount: amount})
}

// Fold folds the current hand
func (pc *PokerClient) Fold(ctx context.Context) error {
	return pc.Act(ctx, poker.ActionFold, 0)
}

// Check passes the action without betting
func (pc *PokerClient) Check(ctx context.Context) error {
	return pc.Act(ctx, poker.ActionCheck, 0)
}

// Call matches the current bet
func (pc *PokerClient) Call(ctx context.Context) error {
	return pc.Act(ctx, poker.ActionCall, 0)
}

// Raise raises the bet to total (not by total).
func (pc *PokerClient) Raise(ctx context.Context, total int64) error {
	return pc.Act(ctx, poker.ActionRaise, total)
}

// Act sends a betting action. Rejections arrive as actionRejected.
func (pc *PokerClient) Act(ctx context.Context, action poker.ActionType, amount int64) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgAction, Action: action, Amount: amount})
}

func (pc *PokerClient) SitOut(ctx context.Context) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgSitOut})
}

func (pc *PokerClient) SitIn(ctx context.Context) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgSitIn})
}

// AddChips tops up the stack between hands.
func (pc *PokerClient) AddChips(ctx context.Context, amount int64) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgAddChips, Amount: amount})
}

func (pc *PokerClient) Ping(ctx context.Context) error {
	return pc.send(ctx, pokerws.ClientMessage{Type: pokerws.MsgPing})
}

// IsMyTurn reports whether the latest state has this client to act.
func (pc *PokerClient) IsMyTurn() bool {
	gs := pc.State()
	return gs.Phase.IsBetting() && gs.ActivePlayerID == pc.ID
}

// ToCall returns what a call would cost right now.
func (pc *PokerClient) ToCall() int64 {
	gs := pc.State()
	me, ok := gs.PlayerByID(pc.ID)
	if !ok || gs.CurrentBet <= me.CurrentBet {
		return 0
	}
	return gs.CurrentBet - me.CurrentBet
}
