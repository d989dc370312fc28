package poker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength is the longest display name kept; longer ones are cut.
const MaxNameLength = 24

// TableInfo is what a newly joined player needs to pick a seat.
type TableInfo struct {
	AvailableSeats []int `json:"availableSeats"`
	MinBuyIn       int64 `json:"minBuyIn"`
	SuggestedBuyIn int64 `json:"suggestedBuyIn"`
	MaxBuyIn       int64 `json:"maxBuyIn"`
	SmallBlind     int64 `json:"smallBlind"`
	BigBlind       int64 `json:"bigBlind"`
	MaxSeats       int   `json:"maxSeats"`
}

// TableInfo returns the seating and buy-in terms of the table.
func (t *Table) TableInfo() TableInfo {
	return TableInfo{
		AvailableSeats: t.availableSeats(),
		MinBuyIn:       t.config.MinBuyIn,
		SuggestedBuyIn: t.config.SuggestedBuyIn,
		MaxBuyIn:       t.config.MaxBuyIn,
		SmallBlind:     t.config.SmallBlind,
		BigBlind:       t.config.BigBlind,
		MaxSeats:       t.config.MaxSeats,
	}
}

// availableSeats returns the free seat numbers in ascending order.
func (t *Table) availableSeats() []int {
	seats := make([]int, 0, t.config.MaxSeats)
	for s := 0; s < t.config.MaxSeats; s++ {
		if t.playerAtSeat(s) == nil {
			seats = append(seats, s)
		}
	}
	return seats
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player-" + uuid.NewString()[:4]
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}

// Join adds a player to the roster, unseated and sitting out.
func (t *Table) Join(name string) (*Player, TableInfo) {
	p := NewPlayer(uuid.NewString(), cleanName(name))
	t.players = append(t.players, p)
	t.log.Infof("%s joined (%s)", p.Name, p.ID)
	return p, t.TableInfo()
}

// BuyIn seats a player with amount chips and marks them ready. The next hand
// starts right away if this makes two ready players.
func (t *Table) BuyIn(playerID string, seat int, amount int64) error {
	p := t.Player(playerID)
	switch {
	case p == nil:
		return ErrUnknownPlayer
	case p.IsSeated():
		return fmt.Errorf("%w at seat %d", ErrAlreadySeated, p.Seat)
	case amount < t.config.MinBuyIn:
		return fmt.Errorf("%w: %d < %d", ErrBuyInTooSmall, amount, t.config.MinBuyIn)
	case t.config.MaxBuyIn > 0 && amount > t.config.MaxBuyIn:
		return fmt.Errorf("%w: %d > %d", ErrBuyInTooLarge, amount, t.config.MaxBuyIn)
	case seat < 0 || seat >= t.config.MaxSeats || t.playerAtSeat(seat) != nil:
		return fmt.Errorf("%w: %d", ErrSeatTaken, seat)
	}

	p.Seat = seat
	p.Chips = amount
	p.IsSittingOut = false
	p.IsReadyToPlay = true
	p.NeedsBuyIn = false
	t.chipsInPlay += amount
	t.log.Infof("%s bought in for %d at seat %d", p.Name, amount, seat)

	t.maybeStartHand()
	return nil
}

// AddChips tops up a seated player's stack between hands.
func (t *Table) AddChips(playerID string, amount int64) error {
	p := t.Player(playerID)
	switch {
	case p == nil:
		return ErrUnknownPlayer
	case !p.IsSeated():
		return ErrNotSeated
	case p.IsActive && t.phase.InHand():
		return ErrHandInProgress
	case amount < t.config.MinBuyIn:
		return fmt.Errorf("%w: %d < %d", ErrBuyInTooSmall, amount, t.config.MinBuyIn)
	case t.config.MaxBuyIn > 0 && p.Chips+amount > t.config.MaxBuyIn:
		return fmt.Errorf("%w: stack would be %d, maximum is %d",
			ErrBuyInTooLarge, p.Chips+amount, t.config.MaxBuyIn)
	}

	p.Chips += amount
	p.NeedsBuyIn = false
	t.chipsInPlay += amount
	t.log.Infof("%s added %d chips (stack %d)", p.Name, amount, p.Chips)
	return nil
}

// SitOut benches a player from the next hand. On their turn it is the same
// as running out of time.
func (t *Table) SitOut(playerID string) error {
	p := t.Player(playerID)
	switch {
	case p == nil:
		return ErrUnknownPlayer
	case !p.IsSeated():
		return ErrNotSeated
	}

	if p.IsTurn {
		t.expireTurn(p)
		return nil
	}
	p.IsSittingOut = true
	p.IsReadyToPlay = false
	t.checkCollapse()
	return nil
}

// SitIn marks a seated player with chips ready for the next hand.
func (t *Table) SitIn(playerID string) error {
	p := t.Player(playerID)
	switch {
	case p == nil:
		return ErrUnknownPlayer
	case !p.IsSeated():
		return ErrNotSeated
	case p.Chips <= 0:
		return ErrNoChips
	}

	p.IsSittingOut = false
	p.IsReadyToPlay = true
	p.NeedsBuyIn = false
	t.maybeStartHand()
	return nil
}

// Leave removes a player from the table. A player holding the turn times out
// first; one still in the hand folds. What they already bet stays in the pot.
func (t *Table) Leave(playerID string) error {
	p := t.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	switch {
	case p.IsTurn:
		t.expireTurn(p)
	case p.IsActive && t.phase.InHand():
		t.foldOutOfTurn(p)
	}
	if t.phase.InHand() && p.Contributed > 0 {
		t.pot += p.CurrentBet
		p.CurrentBet = 0
		t.departed = append(t.departed, Contribution{Amount: p.Contributed})
	}

	t.chipsInPlay -= p.Chips
	for i, q := range t.players {
		if q == p {
			t.players = append(t.players[:i], t.players[i+1:]...)
			break
		}
	}
	t.log.Infof("%s left (seat %d, chips %d)", p.Name, p.Seat, p.Chips)
	p.Seat = -1

	t.checkCollapse()
	return nil
}
