package poker

import "time"

// PlayerState is the public view of one roster entry.
type PlayerState struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Chips           int64      `json:"chips"`
	Seat            int        `json:"seat"`
	HoleCards       []Card     `json:"holeCards,omitempty"`
	HasCards        bool       `json:"hasCards"`
	CurrentBet      int64      `json:"currentBet"`
	Contributed     int64      `json:"contributed"`
	LastAction      ActionType `json:"lastAction,omitempty"`
	Status          string     `json:"status"`
	IsActive        bool       `json:"isActive"`
	IsAllIn         bool       `json:"isAllIn"`
	IsSittingOut    bool       `json:"isSittingOut"`
	IsDealer        bool       `json:"isDealer"`
	IsTurn          bool       `json:"isTurn"`
	HasActed        bool       `json:"hasActed"`
	IsWinner        bool       `json:"isWinner"`
	IsReadyToPlay   bool       `json:"isReadyToPlay"`
	NeedsBuyIn      bool       `json:"needsBuyIn"`
	HandDescription string     `json:"handDescription,omitempty"`

	// revealed is set for players whose cards were shown at showdown.
	revealed bool
}

// GameState is a full snapshot of the table.
type GameState struct {
	HandNumber      uint64        `json:"handNumber"`
	Phase           Phase         `json:"phase"`
	Players         []PlayerState `json:"players"`
	CommunityCards  []Card        `json:"communityCards"`
	Pot             int64         `json:"pot"`
	TotalPot        int64         `json:"totalPot"`
	CurrentBet      int64         `json:"currentBet"`
	MinRaise        int64         `json:"minRaise"`
	DealerID        string        `json:"dealerId,omitempty"`
	ActivePlayerID  string        `json:"activePlayerId,omitempty"`
	LastBetPlayerID string        `json:"lastBetPlayerId,omitempty"`
	SmallBlind      int64         `json:"smallBlind"`
	BigBlind        int64         `json:"bigBlind"`
	AvailableSeats  []int         `json:"availableSeats"`
	MaxSeats        int           `json:"maxSeats"`
	TurnDeadline    *time.Time    `json:"turnDeadline,omitempty"`
	LastResult      *HandResult   `json:"lastResult,omitempty"`
}

// Snapshot returns the unredacted state of the table. Slices are copies.
func (t *Table) Snapshot() GameState {
	gs := GameState{
		HandNumber:      t.handNumber,
		Phase:           t.phase,
		Players:         make([]PlayerState, 0, len(t.players)),
		CommunityCards:  append([]Card{}, t.community...),
		Pot:             t.pot,
		TotalPot:        t.pot,
		CurrentBet:      t.currentBet,
		MinRaise:        t.MinRaise(),
		DealerID:        t.dealerID,
		ActivePlayerID:  t.activePlayerID,
		LastBetPlayerID: t.lastBetPlayerID,
		SmallBlind:      t.config.SmallBlind,
		BigBlind:        t.config.BigBlind,
		AvailableSeats:  t.availableSeats(),
		MaxSeats:        t.config.MaxSeats,
	}
	if t.phase == Settling {
		gs.LastResult = t.lastResult
	}
	if deadline, ok := t.sched.Deadline(TurnTask); ok {
		gs.TurnDeadline = &deadline
	}

	for _, p := range t.players {
		gs.TotalPot += p.CurrentBet
		gs.Players = append(gs.Players, PlayerState{
			ID:              p.ID,
			Name:            p.Name,
			Chips:           p.Chips,
			Seat:            p.Seat,
			HoleCards:       append([]Card(nil), p.HoleCards...),
			HasCards:        len(p.HoleCards) > 0,
			CurrentBet:      p.CurrentBet,
			Contributed:     p.Contributed,
			LastAction:      p.LastAction,
			Status:          p.Status(),
			IsActive:        p.IsActive,
			IsAllIn:         p.IsAllIn,
			IsSittingOut:    p.IsSittingOut,
			IsDealer:        p.IsDealer,
			IsTurn:          p.IsTurn,
			HasActed:        p.HasActed,
			IsWinner:        p.IsWinner,
			IsReadyToPlay:   p.IsReadyToPlay,
			NeedsBuyIn:      p.NeedsBuyIn,
			HandDescription: p.HandDescription,
			revealed:        p.HandValue != nil,
		})
	}
	return gs
}

// ForPlayer returns a copy of the snapshot as playerID may see it: other
// players' hole cards are hidden unless they were shown at showdown. An
// empty playerID gives the public view.
func (g GameState) ForPlayer(playerID string) GameState {
	out := g
	out.Players = make([]PlayerState, len(g.Players))
	for i, p := range g.Players {
		if p.ID != playerID && !(p.revealed && (g.Phase == Showdown || g.Phase == Settling)) {
			p.HoleCards = nil
			p.HandDescription = ""
		}
		out.Players[i] = p
	}
	return out
}

// PlayerByID returns the entry for id from the snapshot.
func (g GameState) PlayerByID(id string) (PlayerState, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerState{}, false
}
