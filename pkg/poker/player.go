package poker

import (
	"fmt"
	"strings"
	"time"
)

// ActionType names a betting action. Blind and timeout only ever appear as a
// player's LastAction.
type ActionType string

const (
	ActionFold    ActionType = "fold"
	ActionCheck   ActionType = "check"
	ActionCall    ActionType = "call"
	ActionRaise   ActionType = "raise"
	ActionBlind   ActionType = "blind"
	ActionTimeout ActionType = "timeout"
)

// Action is a betting decision. Amount is only read for raises, where it is
// the total the player wants their bet for the street to reach.
type Action struct {
	Type   ActionType `json:"action"`
	Amount int64      `json:"amount,omitempty"`
}

// Player is one entry of the table roster, seated or not.
type Player struct {
	// Identity
	ID       string
	Name     string
	JoinedAt time.Time

	Chips int64
	Seat  int // -1 while not seated

	// Hand state, reset between hands
	HoleCards   []Card
	CurrentBet  int64 // wagered on the current street
	Contributed int64 // committed over the whole hand
	LastAction  ActionType

	IsActive      bool // contesting the current pot
	IsAllIn       bool
	IsSittingOut  bool
	IsDealer      bool
	IsTurn        bool
	HasActed      bool
	IsWinner      bool
	IsReadyToPlay bool
	NeedsBuyIn    bool

	// Populated at showdown
	HandValue       *HandValue
	HandDescription string
}

// NewPlayer creates a roster entry for someone who just joined: no seat, no
// chips, sitting out.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:           id,
		Name:         name,
		JoinedAt:     time.Now(),
		Seat:         -1,
		IsSittingOut: true,
	}
}

// IsSeated reports whether the player holds a seat.
func (p *Player) IsSeated() bool {
	return p.Seat >= 0
}

// canAct reports whether the player still has decisions to make this hand.
func (p *Player) canAct() bool {
	return p.IsActive && !p.IsAllIn
}

// readyForHand reports whether the player should be dealt into a new hand.
func (p *Player) readyForHand() bool {
	return p.IsSeated() && p.Chips > 0 && p.IsReadyToPlay && !p.IsSittingOut
}

// commit moves up to amount chips from the stack into the current bet and
// returns what actually moved.
func (p *Player) commit(amount int64) int64 {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.Contributed += amount
	if p.Chips == 0 && p.IsActive {
		p.IsAllIn = true
	}
	return amount
}

// ResetForNewHand clears the hand level state while keeping the seat, the
// stack and the sitting out flags.
func (p *Player) ResetForNewHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.Contributed = 0
	p.LastAction = ""
	p.IsActive = false
	p.IsAllIn = false
	p.IsDealer = false
	p.IsTurn = false
	p.HasActed = false
	p.IsWinner = false
	p.HandValue = nil
	p.HandDescription = ""
}

// Status returns a short label of where the player stands.
func (p *Player) Status() string {
	switch {
	case !p.IsSeated():
		return "UNSEATED"
	case p.IsActive && p.IsAllIn:
		return "ALL_IN"
	case p.IsActive:
		return "IN_GAME"
	case len(p.HoleCards) > 0:
		return "FOLDED"
	case p.IsSittingOut:
		return "SITTING_OUT"
	default:
		return "AT_TABLE"
	}
}

// GetHandString returns a string representation of the player's hole cards
func (p *Player) GetHandString() string {
	if len(p.HoleCards) == 0 {
		return "No cards"
	}
	parts := make([]string, len(p.HoleCards))
	for i, c := range p.HoleCards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (p *Player) String() string {
	return fmt.Sprintf("%s(seat %d, chips %d, bet %d, %s)",
		p.Name, p.Seat, p.Chips, p.CurrentBet, p.Status())
}
