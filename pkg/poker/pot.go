package poker

import "sort"

// Contribution is what one player put into the pot over a hand. Players that
// left the table mid-hand keep their contribution as dead money with an empty
// PlayerID and Contesting false.
type Contribution struct {
	PlayerID   string
	Amount     int64
	Contesting bool
}

// Pot represents a pot of chips in the game
type Pot struct {
	Amount int64 `json:"amount"`
	// Eligible lists the contesting players who can win this pot, in
	// clockwise order starting left of the dealer.
	Eligible []string `json:"eligible"`
}

// Award is one transfer from a pot to a winner.
type Award struct {
	PlayerID string `json:"playerId"`
	Pot      int    `json:"pot"`
	Amount   int64  `json:"amount"`
}

// BuildPots splits contributions into a main pot and side pots.
//
// Pot boundaries are the distinct amounts contributed by contesting players.
// Every player, folded or not, pays into each pot up to that level. Chips
// above the highest contesting level can only come from folded players and
// are added to the last pot. contribs must be in clockwise order from the
// dealer's left so that Eligible comes out in the same order.
func BuildPots(contribs []Contribution) []Pot {
	seen := map[int64]bool{}
	for _, c := range contribs {
		if c.Contesting && c.Amount > 0 {
			seen[c.Amount] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}

	levels := make([]int64, 0, len(seen))
	for lvl := range seen {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	pots := make([]Pot, 0, len(levels))
	prev := int64(0)
	for _, lvl := range levels {
		var p Pot
		for _, c := range contribs {
			if c.Amount > prev {
				p.Amount += min(c.Amount, lvl) - prev
			}
			if c.Contesting && c.Amount >= lvl {
				p.Eligible = append(p.Eligible, c.PlayerID)
			}
		}
		pots = append(pots, p)
		prev = lvl
	}

	top := levels[len(levels)-1]
	for _, c := range contribs {
		if c.Amount > top {
			pots[len(pots)-1].Amount += c.Amount - top
		}
	}
	return pots
}

// DistributePots pays every pot to its best hands. A pot with a single
// eligible player goes to that player without looking at hands. Ties split
// evenly; odd chips go to the tied winner closest to the dealer's left.
func DistributePots(pots []Pot, hands map[string]*HandValue) []Award {
	var awards []Award
	for pi, pot := range pots {
		if pot.Amount == 0 || len(pot.Eligible) == 0 {
			continue
		}
		if len(pot.Eligible) == 1 {
			awards = append(awards, Award{PlayerID: pot.Eligible[0], Pot: pi, Amount: pot.Amount})
			continue
		}

		var winners []string
		var best *HandValue
		for _, id := range pot.Eligible {
			hv := hands[id]
			if hv == nil {
				continue
			}
			switch {
			case best == nil || CompareHands(*hv, *best) > 0:
				best = hv
				winners = []string{id}
			case CompareHands(*hv, *best) == 0:
				winners = append(winners, id)
			}
		}
		if len(winners) == 0 {
			// Nobody showed a hand; keep the chips with the first in line.
			winners = pot.Eligible[:1]
		}

		share := pot.Amount / int64(len(winners))
		rem := pot.Amount % int64(len(winners))
		for i, id := range winners {
			add := share
			if i == 0 {
				add += rem
			}
			awards = append(awards, Award{PlayerID: id, Pot: pi, Amount: add})
		}
	}
	return awards
}

// TotalAwarded sums awards per player.
func TotalAwarded(awards []Award) map[string]int64 {
	totals := make(map[string]int64, len(awards))
	for _, a := range awards {
		totals[a.PlayerID] += a.Amount
	}
	return totals
}
