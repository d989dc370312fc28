// Package ui is a terminal client for a table server.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

type menuOption string

const (
	optionTakeSeat menuOption = "Take Seat"
	optionFold     menuOption = "Fold"
	optionCheck    menuOption = "Check"
	optionCall     menuOption = "Call"
	optionRaise    menuOption = "Raise"
	optionAllIn    menuOption = "All In"
	optionSitOut   menuOption = "Sit Out"
	optionSitIn    menuOption = "Sit In"
	optionAddChips menuOption = "Add Chips"
	optionQuit     menuOption = "Quit"
)

// screenState represents the current screen in the UI
type screenState int

const (
	stateTable screenState = iota
	stateBuyIn
	stateRaiseInput
	stateAddChips
)

// PokerUI contains all the state for the UI
type PokerUI struct {
	ctx        context.Context
	playerID   string
	info       poker.TableInfo
	dispatcher *CommandDispatcher

	state        screenState
	gs           poker.GameState
	menuOptions  []menuOption
	selectedItem int

	// Buy-in form
	seatInput   string
	amountInput string
	formField   int

	// Raise and add-chips input
	amountEntry string

	message      string
	notification string
	err          error
	disconnected bool
}

// NewPokerUI creates the model for a connected client.
func NewPokerUI(ctx context.Context, pc *client.PokerClient) *PokerUI {
	return newPokerUI(ctx, pc.ID, pc.TableInfo, NewCommandDispatcher(ctx, pc))
}

func newPokerUI(ctx context.Context, playerID string, info poker.TableInfo, d *CommandDispatcher) *PokerUI {
	ui := &PokerUI{
		ctx:        ctx,
		playerID:   playerID,
		info:       info,
		dispatcher: d,
		state:      stateTable,
	}
	ui.updateMenuOptions()
	return ui
}

func (ui *PokerUI) Init() tea.Cmd {
	return ui.dispatcher.listenCmd()
}

func (ui *PokerUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		ih := InputHandler{ui: ui}
		return ui, ih.HandleKeyMsg(msg)

	case serverMsg:
		ui.handleServerMessage(client.Message(msg))
		return ui, ui.dispatcher.listenCmd()

	case actionSentMsg:
		ui.message = string(msg)
		ui.err = nil

	case errorMsg:
		ui.err = error(msg)

	case streamErrorMsg:
		// The stream is ending; listen once more for the disconnect.
		ui.err = msg.err
		return ui, ui.dispatcher.listenCmd()

	case disconnectedMsg:
		ui.disconnected = true
		ui.message = "Disconnected from table"
	}
	return ui, nil
}

func (ui *PokerUI) handleServerMessage(msg client.Message) {
	switch msg.Type {
	case pokerws.MsgGameState:
		var gs poker.GameState
		if err := msg.Decode(&gs); err != nil {
			ui.err = err
			return
		}
		ui.gs = gs
		ui.info.AvailableSeats = gs.AvailableSeats
		if ui.state == stateRaiseInput && !ui.isMyTurn() {
			ui.state = stateTable
		}
		ui.updateMenuOptions()

	case pokerws.MsgNotification:
		var n poker.Notification
		if err := msg.Decode(&n); err == nil && n.Message != "" {
			ui.notification = n.Message
		}

	case pokerws.MsgNeedsBuyIn:
		ui.message = fmt.Sprintf("Out of chips. Add at least %d to keep playing", ui.info.MinBuyIn)

	case pokerws.MsgBuyInError, pokerws.MsgActionRejected, pokerws.MsgError:
		ui.err = errors.New(msg.Reason)
	}
}

func (ui *PokerUI) me() (poker.PlayerState, bool) {
	p, ok := ui.gs.PlayerByID(ui.playerID)
	return p, ok && p.Seat >= 0
}

func (ui *PokerUI) isMyTurn() bool {
	return ui.gs.Phase.IsBetting() && ui.gs.ActivePlayerID == ui.playerID
}

func (ui *PokerUI) toCall() int64 {
	me, _ := ui.me()
	if ui.gs.CurrentBet <= me.CurrentBet {
		return 0
	}
	return ui.gs.CurrentBet - me.CurrentBet
}

// updateMenuOptions rebuilds the menu for what the player can do right now.
func (ui *PokerUI) updateMenuOptions() {
	me, seated := ui.me()
	var opts []menuOption
	switch {
	case !seated:
		opts = append(opts, optionTakeSeat)
	case ui.isMyTurn():
		opts = append(opts, optionFold)
		if ui.toCall() == 0 {
			opts = append(opts, optionCheck)
		} else {
			opts = append(opts, optionCall)
		}
		if me.Chips > ui.toCall() {
			opts = append(opts, optionRaise)
		}
		opts = append(opts, optionAllIn, optionSitOut)
	default:
		if me.IsSittingOut || me.NeedsBuyIn {
			opts = append(opts, optionSitIn)
		} else {
			opts = append(opts, optionSitOut)
		}
		if !ui.gs.Phase.InHand() {
			opts = append(opts, optionAddChips)
		}
	}
	opts = append(opts, optionQuit)

	ui.menuOptions = opts
	if ui.selectedItem >= len(opts) {
		ui.selectedItem = len(opts) - 1
	}
}

// minRaiseTo is the smallest legal raise-to total, capped at the stack.
func (ui *PokerUI) minRaiseTo() int64 {
	me, _ := ui.me()
	min := ui.gs.MinRaise
	if all := me.CurrentBet + me.Chips; all < min {
		min = all
	}
	return min
}

func (ui *PokerUI) startBuyIn() {
	ui.state = stateBuyIn
	ui.formField = 0
	ui.seatInput = ""
	if len(ui.info.AvailableSeats) > 0 {
		ui.seatInput = strconv.Itoa(ui.info.AvailableSeats[0])
	}
	ui.amountInput = strconv.FormatInt(ui.info.SuggestedBuyIn, 10)
}

// View renders the current state of the UI
func (ui *PokerUI) View() string {
	r := Renderer{ui: ui}
	var s string
	switch ui.state {
	case stateBuyIn:
		s = r.RenderBuyIn()
	case stateRaiseInput:
		s = r.RenderAmountInput("Raise to", fmt.Sprintf("Minimum %d", ui.minRaiseTo()))
	case stateAddChips:
		hint := "No stack limit"
		if ui.info.MaxBuyIn > 0 {
			hint = fmt.Sprintf("Stack may not exceed %d", ui.info.MaxBuyIn)
		}
		s = r.RenderAmountInput("Add chips", hint)
	default:
		s = r.RenderTable()
	}
	return s + r.renderFooter()
}

// Run starts the UI and blocks until the user quits.
func Run(ctx context.Context, pc *client.PokerClient) error {
	p := tea.NewProgram(NewPokerUI(ctx, pc), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}
