package ui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

type call struct {
	what   string
	seat   int
	amount int64
	action poker.ActionType
}

type fakeClient struct {
	calls []call
	err   error
}

func (f *fakeClient) BuyIn(_ context.Context, seat int, amount int64) error {
	f.calls = append(f.calls, call{what: "buyIn", seat: seat, amount: amount})
	return f.err
}

func (f *fakeClient) Act(_ context.Context, action poker.ActionType, amount int64) error {
	f.calls = append(f.calls, call{what: "act", action: action, amount: amount})
	return f.err
}

func (f *fakeClient) SitOut(context.Context) error {
	f.calls = append(f.calls, call{what: "sitOut"})
	return f.err
}

func (f *fakeClient) SitIn(context.Context) error {
	f.calls = append(f.calls, call{what: "sitIn"})
	return f.err
}

func (f *fakeClient) AddChips(_ context.Context, amount int64) error {
	f.calls = append(f.calls, call{what: "addChips", amount: amount})
	return f.err
}

var testInfo = poker.TableInfo{
	AvailableSeats: []int{0, 1, 2, 3, 4, 5},
	MinBuyIn:       200,
	SuggestedBuyIn: 1000,
	MaxBuyIn:       4000,
	SmallBlind:     10,
	BigBlind:       20,
	MaxSeats:       6,
}

func newTestUI(t *testing.T) (*PokerUI, *fakeClient, chan client.Message) {
	t.Helper()
	fc := &fakeClient{}
	updates := make(chan client.Message, 8)
	d := &CommandDispatcher{
		ctx:     context.Background(),
		tc:      fc,
		updates: updates,
		errs:    make(chan error),
		done:    make(chan struct{}),
	}
	return newPokerUI(context.Background(), "me", testInfo, d), fc, updates
}

func stateMsg(t *testing.T, gs poker.GameState) tea.Msg {
	t.Helper()
	b, err := json.Marshal(gs)
	require.NoError(t, err)
	return serverMsg(client.Message{Type: pokerws.MsgGameState, Data: b})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys in order and runs the command produced by the last one.
func press(t *testing.T, ui *PokerUI, keys ...string) tea.Msg {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = ui.Update(key(k))
	}
	if cmd == nil {
		return nil
	}
	msg := cmd()
	ui.Update(msg)
	return msg
}

// myTurn is a pre-flop spot where "me" faces the big blind.
func myTurn() poker.GameState {
	return poker.GameState{
		HandNumber:     1,
		Phase:          poker.PreFlop,
		CurrentBet:     20,
		MinRaise:       40,
		TotalPot:       30,
		ActivePlayerID: "me",
		AvailableSeats: []int{2, 3, 4, 5},
		Players: []poker.PlayerState{
			{ID: "me", Name: "alice", Seat: 0, Chips: 990, CurrentBet: 10, IsTurn: true,
				IsActive: true, IsDealer: true, Status: "active",
				HoleCards: poker.MustParseCards("Ah Kd"), HasCards: true},
			{ID: "bob", Name: "bob", Seat: 1, Chips: 980, CurrentBet: 20, IsActive: true,
				Status: "active", HasCards: true},
		},
	}
}

func TestWatcherTakesSeat(t *testing.T) {
	ui, fc, _ := newTestUI(t)
	assert.Equal(t, []menuOption{optionTakeSeat, optionQuit}, ui.menuOptions)
	assert.Contains(t, ui.View(), "You are watching")

	press(t, ui, "enter")
	require.Equal(t, stateBuyIn, ui.state)
	assert.Equal(t, "0", ui.seatInput)
	assert.Equal(t, "1000", ui.amountInput)
	assert.Contains(t, ui.View(), "suggested 1000")

	// Seat 3 for 500.
	msg := press(t, ui, "backspace", "3", "tab", "backspace", "backspace", "backspace", "backspace", "5", "0", "0", "enter")
	assert.Equal(t, stateTable, ui.state)
	assert.IsType(t, actionSentMsg(""), msg)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, call{what: "buyIn", seat: 3, amount: 500}, fc.calls[0])
}

func TestStateUpdatesMenu(t *testing.T) {
	ui, _, _ := newTestUI(t)

	_, cmd := ui.Update(stateMsg(t, myTurn()))
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, []menuOption{optionFold, optionCall, optionRaise, optionAllIn, optionSitOut, optionQuit}, ui.menuOptions)
	assert.Equal(t, []int{2, 3, 4, 5}, ui.info.AvailableSeats)

	view := ui.View()
	assert.Contains(t, view, "YOUR TURN")
	assert.Contains(t, view, "Call 10")
	assert.Contains(t, view, "A♥")
	assert.Contains(t, view, "POT: 30")

	gs := myTurn()
	gs.ActivePlayerID = "bob"
	gs.Players[0].IsTurn = false
	ui.Update(stateMsg(t, gs))
	assert.Equal(t, []menuOption{optionSitOut, optionQuit}, ui.menuOptions)

	gs.Phase = poker.WaitingForPlayers
	gs.Players[0].IsSittingOut = true
	ui.Update(stateMsg(t, gs))
	assert.Equal(t, []menuOption{optionSitIn, optionAddChips, optionQuit}, ui.menuOptions)
}

func TestBettingShortcuts(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want call
	}{
		{"fold", []string{"f"}, call{what: "act", action: poker.ActionFold}},
		{"call", []string{"c"}, call{what: "act", action: poker.ActionCall}},
		{"min raise", []string{"r", "enter"}, call{what: "act", action: poker.ActionRaise, amount: 40}},
		{"typed raise", []string{"r", "backspace", "backspace", "1", "2", "0", "enter"},
			call{what: "act", action: poker.ActionRaise, amount: 120}},
		{"all in", []string{"down", "down", "down", "enter"},
			call{what: "act", action: poker.ActionRaise, amount: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, fc, _ := newTestUI(t)
			ui.Update(stateMsg(t, myTurn()))
			press(t, ui, tt.keys...)
			require.Len(t, fc.calls, 1)
			assert.Equal(t, tt.want, fc.calls[0])
			assert.Equal(t, stateTable, ui.state)
		})
	}
}

func TestCheckWhenNothingToCall(t *testing.T) {
	ui, fc, _ := newTestUI(t)
	gs := myTurn()
	gs.Players[0].CurrentBet = 20
	ui.Update(stateMsg(t, gs))
	assert.Contains(t, ui.menuOptions, optionCheck)
	assert.NotContains(t, ui.menuOptions, optionCall)

	press(t, ui, "c")
	require.Len(t, fc.calls, 1)
	assert.Equal(t, poker.ActionCheck, fc.calls[0].action)
}

func TestActionsIgnoredOutOfTurn(t *testing.T) {
	ui, fc, _ := newTestUI(t)
	gs := myTurn()
	gs.ActivePlayerID = "bob"
	ui.Update(stateMsg(t, gs))

	press(t, ui, "f")
	press(t, ui, "r")
	assert.Empty(t, fc.calls)
	assert.Equal(t, stateTable, ui.state)
}

func TestRaiseInputClosesWhenTurnPasses(t *testing.T) {
	ui, _, _ := newTestUI(t)
	ui.Update(stateMsg(t, myTurn()))
	press(t, ui, "r")
	require.Equal(t, stateRaiseInput, ui.state)
	assert.Contains(t, ui.View(), "Minimum 40")

	gs := myTurn()
	gs.ActivePlayerID = "bob"
	ui.Update(stateMsg(t, gs))
	assert.Equal(t, stateTable, ui.state)
}

func TestServerErrorsShown(t *testing.T) {
	ui, _, _ := newTestUI(t)
	ui.Update(serverMsg(client.Message{Type: pokerws.MsgActionRejected, Reason: "not your turn", Code: "not-your-turn"}))
	assert.Contains(t, ui.View(), "not your turn")

	n, err := json.Marshal(poker.Notification{Kind: poker.NotifyGameEnd, Message: "bob wins 40"})
	require.NoError(t, err)
	ui.Update(serverMsg(client.Message{Type: pokerws.MsgNotification, Data: n}))
	assert.Contains(t, ui.View(), "bob wins 40")
}

func TestSendErrorKeepsSingleListener(t *testing.T) {
	ui, fc, _ := newTestUI(t)
	fc.err = errors.New("client closed")
	ui.Update(stateMsg(t, myTurn()))

	msg := press(t, ui, "f")
	_, isErr := msg.(error)
	require.True(t, isErr)
	_, cmd := ui.Update(msg)
	assert.Nil(t, cmd)
	assert.Contains(t, ui.View(), "client closed")
}

func TestDisconnect(t *testing.T) {
	ui, _, _ := newTestUI(t)
	done := make(chan struct{})
	close(done)
	ui.dispatcher.done = done
	ui.dispatcher.updates = nil

	msg := ui.Init()()
	assert.Equal(t, disconnectedMsg{}, msg)
	_, cmd := ui.Update(msg)
	assert.Nil(t, cmd)
	assert.True(t, ui.disconnected)
	assert.Contains(t, ui.View(), "Disconnected")
}

func TestListenDeliversServerMessages(t *testing.T) {
	ui, _, updates := newTestUI(t)
	updates <- client.Message{Type: pokerws.MsgPong}
	assert.Equal(t, serverMsg(client.Message{Type: pokerws.MsgPong}), ui.Init()())
}
