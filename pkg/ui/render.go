package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/utils"
)

// Renderer handles all rendering of UI screens and game elements
type Renderer struct {
	ui *PokerUI
}

// RenderTable renders the table: board, hole cards, players and actions.
func (r *Renderer) RenderTable() string {
	gs := r.ui.gs
	var s string
	s += TitleStyle.Render(fmt.Sprintf("🃏 Hold'em %d/%d 🃏", r.ui.info.SmallBlind, r.ui.info.BigBlind)) + "\n\n"
	s += r.renderCommunityCardsSection() + "\n"
	s += r.renderYourCardsSection() + "\n"
	s += PotStyle.Render(fmt.Sprintf("💰 POT: %d", gs.TotalPot)) + "\n"
	s += r.renderGameInfo() + "\n"
	s += r.renderPlayers() + "\n"
	s += r.renderMenu()
	return s
}

// RenderBuyIn renders the seat and amount form.
func (r *Renderer) RenderBuyIn() string {
	info := r.ui.info
	var s string
	s += TitleStyle.Render("🪑 Take a Seat") + "\n\n"
	s += fmt.Sprintf("Open seats: %s\n", formatSeats(info.AvailableSeats))
	limits := fmt.Sprintf("Buy-in: min %d, suggested %d", info.MinBuyIn, info.SuggestedBuyIn)
	if info.MaxBuyIn > 0 {
		limits += fmt.Sprintf(", max %d", info.MaxBuyIn)
	}
	s += limits + "\n\n"

	fields := []struct{ label, value string }{
		{"Seat", r.ui.seatInput},
		{"Amount", r.ui.amountInput},
	}
	for i, f := range fields {
		line := fmt.Sprintf("  %s: %s", f.label, f.value)
		if i == r.ui.formField {
			s += FocusedStyle.Render("▶"+line[1:]) + "\n"
		} else {
			s += BlurredStyle.Render(line) + "\n"
		}
	}
	s += HelpStyle.Render("Tab to switch field, Enter to buy in, Esc to cancel")
	return s
}

// RenderAmountInput renders a single number prompt.
func (r *Renderer) RenderAmountInput(label, hint string) string {
	var s string
	s += TitleStyle.Render(label) + "\n\n"
	s += FocusedStyle.Render(fmt.Sprintf("▶ %s", r.ui.amountEntry)) + "\n"
	s += HelpStyle.Render(hint + ". Enter to confirm, Esc to cancel")
	return s
}

func (r *Renderer) renderCommunityCardsSection() string {
	gs := r.ui.gs
	var cards []string
	for _, c := range gs.CommunityCards {
		cards = append(cards, renderCard(c))
	}
	for i := len(gs.CommunityCards); i < 5; i++ {
		cards = append(cards, CardStyle.Render("🂠"))
	}

	phaseText := phaseLabel(gs.Phase)
	if r.ui.isMyTurn() {
		phaseText += " ← YOUR TURN"
	}
	return SectionStyle.Render("🃏 COMMUNITY CARDS") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n" +
		PhaseStyle.Render(phaseText)
}

func (r *Renderer) renderYourCardsSection() string {
	me, seated := r.ui.me()
	if !seated {
		return HelpStyle.Render("You are watching. Take a seat to play.")
	}
	cards := []string{CardStyle.Render("🂠"), CardStyle.Render("🂠")}
	if len(me.HoleCards) > 0 {
		cards = cards[:0]
		for _, c := range me.HoleCards {
			cards = append(cards, renderCard(c))
		}
	}
	s := SectionStyle.Render("🂠 YOUR CARDS") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if me.HandDescription != "" {
		s += "\n" + PhaseStyle.Render(me.HandDescription)
	}
	return s
}

// renderGameInfo displays the stack, the bet to call and the last message.
func (r *Renderer) renderGameInfo() string {
	gs := r.ui.gs
	var parts []string
	if me, ok := r.ui.me(); ok {
		parts = append(parts, fmt.Sprintf("Stack: %d", me.Chips))
	}
	if gs.CurrentBet > 0 {
		parts = append(parts, fmt.Sprintf("Current Bet: %d", gs.CurrentBet))
	}
	if toCall := r.ui.toCall(); r.ui.isMyTurn() && toCall > 0 {
		parts = append(parts, fmt.Sprintf("To Call: %d", toCall))
	}
	if gs.TurnDeadline != nil && gs.ActivePlayerID != "" {
		parts = append(parts, fmt.Sprintf("Act by %s", gs.TurnDeadline.Format("15:04:05")))
	}
	s := InfoStyle.Render(strings.Join(parts, " | "))
	if r.ui.notification != "" {
		s += "\n" + HelpStyle.Render("📣 "+r.ui.notification)
	}
	if res := gs.LastResult; res != nil && gs.Phase == poker.Settling {
		for _, w := range res.Winners {
			line := fmt.Sprintf("🏆 %s wins %d", w.Name, w.Amount)
			if w.HandDescription != "" {
				line += " with " + w.HandDescription
			}
			s += "\n" + PhaseStyle.Render(line)
		}
	}
	return s
}

func (r *Renderer) renderPlayers() string {
	gs := r.ui.gs
	var boxes []string
	for _, p := range gs.Players {
		if p.Seat < 0 {
			continue
		}
		style := PlayerBoxStyle
		switch {
		case p.ID == r.ui.playerID:
			style = YourPlayerStyle
		case p.IsTurn:
			style = CurrentPlayerStyle
		case !p.IsActive && gs.Phase.InHand():
			style = FoldedPlayerStyle
		}
		boxes = append(boxes, style.Render(r.formatPlayerInfo(p)))
	}
	if len(boxes) == 0 {
		return HelpStyle.Render("👥 No players seated")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// formatPlayerInfo creates a formatted string for player information
func (r *Renderer) formatPlayerInfo(p poker.PlayerState) string {
	name := p.Name
	if len(name) > 12 {
		name = name[:12] + "…"
	}
	if p.IsDealer {
		name += " (D)"
	}
	info := []string{
		fmt.Sprintf("Seat %d: %s", p.Seat, name),
		fmt.Sprintf("💰 %d", p.Chips),
	}
	if p.CurrentBet > 0 {
		info = append(info, fmt.Sprintf("🎯 Bet: %d", p.CurrentBet))
	}
	if len(p.HoleCards) > 0 && p.ID != r.ui.playerID {
		info = append(info, utils.FormatCards(p.HoleCards))
	}
	status := p.Status
	if p.LastAction != "" && r.ui.gs.Phase.InHand() {
		status += " · " + string(p.LastAction)
	}
	return strings.Join(append(info, status), "\n")
}

func (r *Renderer) renderMenu() string {
	var s string
	for i, option := range r.ui.menuOptions {
		label := string(option)
		switch option {
		case optionCall:
			label = fmt.Sprintf("Call %d", r.ui.toCall())
		case optionAllIn:
			if me, ok := r.ui.me(); ok {
				label = fmt.Sprintf("All In (%d)", me.Chips)
			}
		}
		if i == r.ui.selectedItem {
			s += FocusedStyle.Render("▶ "+label) + "\n"
		} else {
			s += BlurredStyle.Render("  "+label) + "\n"
		}
	}
	return s
}

func (r *Renderer) renderFooter() string {
	var s string
	if r.ui.message != "" {
		s += "\n" + TitleStyle.Render(r.ui.message)
	}
	if r.ui.err != nil {
		s += "\n" + ErrorStyle.Render(fmt.Sprintf("Error: %v", r.ui.err))
	}
	if r.ui.state == stateTable {
		s += "\n" + HelpStyle.Render("↑/↓ and Enter to choose · f fold · c check/call · r raise · q quit")
	}
	return s
}

func renderCard(c poker.Card) string {
	if c.Suit == poker.Hearts || c.Suit == poker.Diamonds {
		return RedCardStyle.Render(c.String())
	}
	return CardStyle.Render(c.String())
}

func formatSeats(seats []int) string {
	if len(seats) == 0 {
		return "none"
	}
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ", ")
}

func phaseLabel(p poker.Phase) string {
	switch p {
	case poker.WaitingForPlayers:
		return "⏳ Waiting for players"
	case poker.Dealing:
		return "🎴 Dealing"
	case poker.PreFlop:
		return "🎯 PRE-FLOP"
	case poker.Flop:
		return "🔥 FLOP"
	case poker.Turn:
		return "🎲 TURN"
	case poker.River:
		return "🌊 RIVER"
	case poker.Showdown:
		return "🏆 SHOWDOWN"
	case poker.Settling:
		return "💰 Settling"
	default:
		return p.String()
	}
}
