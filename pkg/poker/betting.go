package poker

import (
	"fmt"
)

// MinRaise returns the smallest legal raise-to total on the current street:
// the current bet plus at least one big blind, and never less than double
// the current bet.
func (t *Table) MinRaise() int64 {
	return t.currentBet + max(t.currentBet, t.config.BigBlind)
}

// Apply validates and applies one betting action for the player holding the
// turn. A rejected action leaves the table untouched.
func (t *Table) Apply(playerID string, a Action) error {
	if !t.phase.IsBetting() || playerID == "" || playerID != t.activePlayerID {
		return fmt.Errorf("%w: %s during %s", ErrNotYourTurn, a.Type, t.phase)
	}
	p := t.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	switch a.Type {
	case ActionFold:
		p.IsActive = false
		p.LastAction = ActionFold

	case ActionCheck:
		if p.CurrentBet != t.currentBet {
			return fmt.Errorf("%w: %d to call", ErrIllegalCheck, t.currentBet-p.CurrentBet)
		}
		p.LastAction = ActionCheck

	case ActionCall:
		owed := t.currentBet - p.CurrentBet
		if owed <= 0 {
			p.LastAction = ActionCheck
			break
		}
		p.commit(owed)
		p.LastAction = ActionCall

	case ActionRaise:
		target := a.Amount
		allIn := p.CurrentBet + p.Chips
		if target >= allIn {
			target = allIn
		} else if minRaise := t.MinRaise(); target < minRaise {
			return fmt.Errorf("%w: raise to %d, minimum is %d", ErrRaiseTooSmall, a.Amount, minRaise)
		}
		p.commit(target - p.CurrentBet)
		if target <= t.currentBet {
			// A short all-in does not reopen the betting.
			p.LastAction = ActionCall
			break
		}
		t.currentBet = target
		t.lastBetPlayerID = p.ID
		p.LastAction = ActionRaise
		for _, other := range t.players {
			if other != p && other.canAct() {
				other.HasActed = false
			}
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	p.HasActed = true
	t.log.Debugf("Hand %d: %s %s (bet %d, chips %d)", t.handNumber, p.Name, p.LastAction, p.CurrentBet, p.Chips)
	t.afterAction(p)
	return nil
}

// afterAction decides what follows an accepted action, fold or timeout: the
// hand ends, the street ends, or the turn moves on.
func (t *Table) afterAction(p *Player) {
	p.IsTurn = false
	t.clearTurn()
	if c := t.contesting(); len(c) == 1 {
		t.awardUncontested(c[0], true)
		return
	}
	if t.roundComplete() {
		t.completeRound()
		return
	}
	next := t.nextToAct(p.Seat)
	if next == nil {
		t.completeRound()
		return
	}
	t.setTurn(next)
}

// roundComplete reports whether the current street's betting is over.
func (t *Table) roundComplete() bool {
	var actors []*Player
	for _, p := range t.players {
		if p.canAct() {
			actors = append(actors, p)
		}
	}
	switch {
	case len(actors) == 0:
		return true
	case len(actors) == 1 && actors[0].CurrentBet >= t.currentBet:
		// Nobody left to bet against.
		return true
	}
	for _, p := range actors {
		if !p.HasActed || p.CurrentBet != t.currentBet {
			return false
		}
	}
	return true
}

func (t *Table) needsAction(p *Player) bool {
	return p.canAct() && (!p.HasActed || p.CurrentBet < t.currentBet)
}

// nextToAct returns the first player after seat, in seat order, who still
// owes a decision on this street.
func (t *Table) nextToAct(seat int) *Player {
	n := t.config.MaxSeats
	for i := 1; i <= n; i++ {
		s := (seat + i) % n
		if s < 0 {
			s += n
		}
		if p := t.playerAtSeat(s); p != nil && t.needsAction(p) {
			return p
		}
	}
	return nil
}

// setTurn gives p the turn and starts its timer. A player who is sitting out
// when the turn reaches them is folded as if their timer ran out.
func (t *Table) setTurn(p *Player) {
	t.clearTurn()
	if p.IsSittingOut {
		t.log.Debugf("%s is sitting out, folding", p.Name)
		t.expireTurn(p)
		return
	}

	t.turnSeq++
	p.IsTurn = true
	t.activePlayerID = p.ID

	n := Notification{
		Kind:     NotifyActionRequired,
		PlayerID: p.ID,
		Message:  fmt.Sprintf("%s to act", p.Name),
	}
	if limit := t.config.TurnTimeLimit; limit > 0 {
		tok := Token{Generation: t.generation, Turn: t.turnSeq}
		t.sched.Schedule(TurnTask, tok, limit, t.onTurnTimeout)
		n.Duration = limit.Milliseconds()
	}
	t.publish(n)
}

func (t *Table) clearTurn() {
	t.sched.Cancel(TurnTask)
	for _, p := range t.players {
		p.IsTurn = false
	}
	t.activePlayerID = ""
}

func (t *Table) onTurnTimeout(tok Token) {
	if tok.Generation != t.generation || tok.Turn != t.turnSeq || !t.phase.IsBetting() {
		t.log.Tracef("Ignoring turn timer %d/%d", tok.Generation, tok.Turn)
		return
	}
	p := t.Player(t.activePlayerID)
	if p == nil {
		return
	}
	t.log.Infof("Hand %d: %s ran out of time", t.handNumber, p.Name)
	t.expireTurn(p)
}

// expireTurn benches p and folds them. Their chips stay in the pot.
func (t *Table) expireTurn(p *Player) {
	p.IsSittingOut = true
	p.IsReadyToPlay = false
	p.IsActive = false
	p.HasActed = true
	p.LastAction = ActionTimeout
	t.afterAction(p)
	t.checkCollapse()
}

// foldOutOfTurn removes a contesting player who does not hold the turn.
func (t *Table) foldOutOfTurn(p *Player) {
	p.IsActive = false
	p.HasActed = true
	p.LastAction = ActionFold
	if c := t.contesting(); len(c) == 1 {
		t.awardUncontested(c[0], true)
		return
	}
	if t.activePlayerID != "" && t.roundComplete() {
		t.completeRound()
	}
}
