package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vctt94/holdemtable/pkg/poker"
)

// InputHandler handles input processing for different UI states
type InputHandler struct {
	ui *PokerUI
}

// HandleKeyMsg processes keyboard input based on current state
func (ih *InputHandler) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch ih.ui.state {
	case stateBuyIn:
		return ih.handleBuyInInput(msg)
	case stateRaiseInput, stateAddChips:
		return ih.handleAmountInput(msg)
	default:
		return ih.handleTableInput(msg)
	}
}

// handleTableInput moves through the menu and runs the selected option.
// Single letters are shortcuts for the betting actions.
func (ih *InputHandler) handleTableInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if ui.selectedItem > 0 {
			ui.selectedItem--
		}
	case "down", "j":
		if ui.selectedItem < len(ui.menuOptions)-1 {
			ui.selectedItem++
		}
	case "f":
		return ih.choose(optionFold)
	case "c":
		if ih.available(optionCheck) {
			return ih.choose(optionCheck)
		}
		return ih.choose(optionCall)
	case "r":
		return ih.choose(optionRaise)
	case "enter", " ":
		if ui.selectedItem < len(ui.menuOptions) {
			return ih.choose(ui.menuOptions[ui.selectedItem])
		}
	}
	return nil
}

func (ih *InputHandler) available(opt menuOption) bool {
	for _, o := range ih.ui.menuOptions {
		if o == opt {
			return true
		}
	}
	return false
}

// choose runs opt if the current menu offers it.
func (ih *InputHandler) choose(opt menuOption) tea.Cmd {
	ui := ih.ui
	if !ih.available(opt) {
		return nil
	}
	d := ui.dispatcher
	switch opt {
	case optionTakeSeat:
		ui.startBuyIn()
	case optionFold:
		return d.actCmd(poker.ActionFold, 0)
	case optionCheck:
		return d.actCmd(poker.ActionCheck, 0)
	case optionCall:
		return d.actCmd(poker.ActionCall, 0)
	case optionRaise:
		ui.state = stateRaiseInput
		ui.amountEntry = strconv.FormatInt(ui.minRaiseTo(), 10)
	case optionAllIn:
		me, _ := ui.me()
		// A raise to the whole stack; the table treats a short one as a call.
		return d.actCmd(poker.ActionRaise, me.CurrentBet+me.Chips)
	case optionSitOut:
		return d.sitOutCmd()
	case optionSitIn:
		return d.sitInCmd()
	case optionAddChips:
		ui.state = stateAddChips
		ui.amountEntry = ""
	case optionQuit:
		return tea.Quit
	}
	return nil
}

// handleBuyInInput edits the seat and amount fields.
func (ih *InputHandler) handleBuyInInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui
	field := &ui.seatInput
	if ui.formField == 1 {
		field = &ui.amountInput
	}
	switch key := msg.String(); key {
	case "esc", "q":
		ui.state = stateTable
	case "up", "shift+tab":
		ui.formField = 0
	case "down", "tab":
		ui.formField = 1
	case "backspace":
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	case "enter":
		seat, err := strconv.Atoi(ui.seatInput)
		if err != nil {
			ui.message = "Seat must be a number"
			return nil
		}
		amount, err := strconv.ParseInt(ui.amountInput, 10, 64)
		if err != nil {
			ui.message = "Amount must be a number"
			return nil
		}
		ui.state = stateTable
		return ui.dispatcher.buyInCmd(seat, amount)
	default:
		if isDigit(key) {
			*field += key
		}
	}
	return nil
}

// handleAmountInput edits the raise or add-chips amount.
func (ih *InputHandler) handleAmountInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui
	switch key := msg.String(); key {
	case "esc", "q":
		ui.state = stateTable
	case "backspace":
		if len(ui.amountEntry) > 0 {
			ui.amountEntry = ui.amountEntry[:len(ui.amountEntry)-1]
		}
	case "enter":
		amount, err := strconv.ParseInt(ui.amountEntry, 10, 64)
		if err != nil {
			return nil
		}
		adding := ui.state == stateAddChips
		ui.state = stateTable
		if adding {
			return ui.dispatcher.addChipsCmd(amount)
		}
		return ui.dispatcher.actCmd(poker.ActionRaise, amount)
	default:
		if isDigit(key) {
			ui.amountEntry += key
		}
	}
	return nil
}

func isDigit(key string) bool {
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}
