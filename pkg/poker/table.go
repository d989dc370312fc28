package poker

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/holdemtable/pkg/statemachine"
)

// Phase is where the table is in the life of a hand.
type Phase int

const (
	WaitingForPlayers Phase = iota
	Dealing
	PreFlop
	Flop
	Turn
	River
	Showdown
	Settling
)

var phaseNames = [...]string{
	WaitingForPlayers: "WAITING_FOR_PLAYERS",
	Dealing:           "DEALING",
	PreFlop:           "PRE_FLOP",
	Flop:              "FLOP",
	Turn:              "TURN",
	River:             "RIVER",
	Showdown:          "SHOWDOWN",
	Settling:          "SETTLING",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// IsBetting reports whether players act in this phase.
func (p Phase) IsBetting() bool {
	return p >= PreFlop && p <= River
}

// InHand reports whether a hand is being played and can still be abandoned.
func (p Phase) InHand() bool {
	return p >= Dealing && p <= River
}

// TableStateFn represents a table state function following Rob Pike's pattern
type TableStateFn = statemachine.StateFn[Table]

// Winner is one line of a hand result.
type Winner struct {
	PlayerID        string `json:"playerId"`
	Name            string `json:"name"`
	Amount          int64  `json:"amount"`
	HandDescription string `json:"handDescription,omitempty"`
}

// HandResult describes how the last hand was settled.
type HandResult struct {
	HandNumber  uint64   `json:"handNumber"`
	Board       []Card   `json:"board"`
	Pots        []Pot    `json:"pots"`
	Winners     []Winner `json:"winners"`
	Uncontested bool     `json:"uncontested"`
	Refunded    bool     `json:"refunded"`
}

// Table is the single authoritative game state. It is not safe for
// concurrent use; the Engine owns it from one goroutine.
type Table struct {
	log          slog.Logger
	config       TableConfig
	rng          *rand.Rand
	clock        Clock
	sched        *Scheduler
	eventManager *TableEventManager

	// Street progression - Rob Pike's pattern. The pending state deals the
	// next street; nil once the hand is settled.
	stateMachine *statemachine.StateMachine[Table]

	players   []*Player // join order
	deck      *Deck
	community []Card
	pot       int64
	departed  []Contribution
	phase     Phase

	currentBet      int64
	dealerID        string
	dealerSeat      int
	activePlayerID  string
	lastBetPlayerID string

	handNumber uint64
	generation uint64
	turnSeq    uint64

	// chipsInPlay is the total the conservation check expects on the table.
	chipsInPlay int64
	lastResult  *HandResult
}

// NewTable creates a table. dispatch hands timer callbacks to the goroutine
// that owns the table; nil runs them inline, which is only safe with a clock
// that fires on the caller's goroutine.
func NewTable(cfg TableConfig, dispatch func(func()), events chan<- TableEvent) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	clock := cfg.Clock
	if clock == nil {
		clock = wallClock{}
	}
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	t := &Table{
		log:          log,
		config:       cfg,
		rng:          rand.New(rand.NewSource(seed)),
		clock:        clock,
		eventManager: NewTableEventManager(log, events),
		phase:        WaitingForPlayers,
		dealerSeat:   -1,
	}
	t.sched = NewScheduler(log, clock, dispatch)
	t.stateMachine = statemachine.NewStateMachine[Table](t, nil)
	return t, nil
}

// Config returns the table configuration.
func (t *Table) Config() TableConfig {
	return t.config
}

// Phase returns the current phase.
func (t *Table) Phase() Phase {
	return t.phase
}

// HandNumber returns the number of hands dealt so far.
func (t *Table) HandNumber() uint64 {
	return t.handNumber
}

// Player returns the roster entry for id, or nil.
func (t *Table) Player(id string) *Player {
	for _, p := range t.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// LastResult returns the settlement of the most recent hand.
func (t *Table) LastResult() *HandResult {
	return t.lastResult
}

// Stop cancels every pending timer.
func (t *Table) Stop() {
	t.sched.CancelAll()
}

func (t *Table) playerAtSeat(seat int) *Player {
	for _, p := range t.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// contesting returns the players still in the pot, in join order.
func (t *Table) contesting() []*Player {
	var out []*Player
	for _, p := range t.players {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// readyPlayers returns the players that would be dealt in, by seat.
func (t *Table) readyPlayers() []*Player {
	var out []*Player
	for _, p := range t.players {
		if p.readyForHand() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// clockwise returns the seated players starting left of the dealer.
func (t *Table) clockwise() []*Player {
	var out []*Player
	for i := 1; i <= t.config.MaxSeats; i++ {
		seat := (t.dealerSeat + i) % t.config.MaxSeats
		if seat < 0 {
			seat += t.config.MaxSeats
		}
		if p := t.playerAtSeat(seat); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (t *Table) publish(n Notification) {
	if n.Phase == 0 {
		n.Phase = t.phase
	}
	t.eventManager.PublishEvent(EventNotification, "", n)
}

func (t *Table) publishWaiting() {
	t.publish(Notification{
		Kind:    NotifyWaitingForPlayers,
		Message: fmt.Sprintf("Waiting for players (%d of 2 ready)", len(t.readyPlayers())),
	})
}

// PublishState emits a full snapshot. Recipients redact it per player.
func (t *Table) PublishState() {
	t.eventManager.PublishEvent(EventGameState, "", t.Snapshot())
}

// maybeStartHand deals a new hand when the table is idle and at least two
// players are ready.
func (t *Table) maybeStartHand() bool {
	if t.phase != WaitingForPlayers || len(t.readyPlayers()) < 2 {
		return false
	}
	t.startHand()
	return true
}

func (t *Table) startHand() {
	t.resetHand()
	t.generation++
	t.handNumber++
	t.stateMachine.Dispatch(dealHand)
	t.beginPreFlop()
}

// resetHand clears everything that belongs to a single hand.
func (t *Table) resetHand() {
	t.sched.Cancel(TurnTask)
	t.sched.Cancel(StreetTask)
	t.stateMachine.SetState(nil)
	for _, p := range t.players {
		p.ResetForNewHand()
	}
	t.deck = nil
	t.community = nil
	t.pot = 0
	t.departed = nil
	t.currentBet = 0
	t.activePlayerID = ""
	t.lastBetPlayerID = ""
}

// toWaiting parks the table until enough players are ready again.
func (t *Table) toWaiting() {
	t.resetHand()
	t.generation++
	t.phase = WaitingForPlayers
}

// State functions following Rob Pike's pattern. Each one deals a street and
// returns the state that deals the next.

func dealHand(t *Table) TableStateFn {
	t.phase = Dealing
	players := t.readyPlayers()

	// The button moves to the first ready seat after the previous one.
	dealerIdx := 0
	for i, p := range players {
		if p.Seat > t.dealerSeat {
			dealerIdx = i
			break
		}
	}
	order := append(append([]*Player{}, players[dealerIdx:]...), players[:dealerIdx]...)
	dealer := order[0]
	dealer.IsDealer = true
	t.dealerID = dealer.ID
	t.dealerSeat = dealer.Seat
	for _, p := range order {
		p.IsActive = true
	}

	t.log.Infof("Hand %d: dealing to %d players, %s has the button",
		t.handNumber, len(order), dealer.Name)
	t.publish(Notification{
		Kind:    NotifyDealing,
		Message: fmt.Sprintf("Dealing hand #%d", t.handNumber),
	})

	t.deck = NewDeck()
	t.deck.Shuffle(t.rng)
	for round := 0; round < 2; round++ {
		for i := 1; i <= len(order); i++ {
			p := order[i%len(order)]
			p.HoleCards = append(p.HoleCards, t.deck.Deal(1)...)
		}
	}

	t.postBlinds(order)
	t.phase = PreFlop
	return dealFlop
}

func dealFlop(t *Table) TableStateFn {
	t.dealStreet(Flop, 3)
	return dealTurn
}

func dealTurn(t *Table) TableStateFn {
	t.dealStreet(Turn, 1)
	return dealRiver
}

func dealRiver(t *Table) TableStateFn {
	t.dealStreet(River, 1)
	return showdown
}

func showdown(t *Table) TableStateFn {
	t.settleShowdown()
	return nil
}

// postBlinds posts the blinds for players ordered from the dealer. Heads-up
// the dealer posts the small blind.
func (t *Table) postBlinds(order []*Player) {
	sb, bb := order[1], order[2%len(order)]
	if len(order) == 2 {
		sb, bb = order[0], order[1]
	}
	t.postBlind(sb, t.config.SmallBlind)
	t.postBlind(bb, t.config.BigBlind)
	t.currentBet = t.config.BigBlind
	t.lastBetPlayerID = bb.ID
}

func (t *Table) postBlind(p *Player, amount int64) {
	posted := p.commit(amount)
	p.LastAction = ActionBlind
	t.log.Debugf("%s posts blind %d (chips %d)", p.Name, posted, p.Chips)
}

func (t *Table) dealStreet(phase Phase, n int) {
	t.community = append(t.community, t.deck.Deal(n)...)
	t.phase = phase
	t.log.Debugf("Hand %d: %s %v", t.handNumber, phase, t.community)
}

func (t *Table) publishPhase() {
	t.publish(Notification{
		Kind:    NotifyPhaseChange,
		Message: strings.ReplaceAll(strings.ToLower(t.phase.String()), "_", "-"),
	})
}

// beginPreFlop hands the first turn to the player after the big blind.
func (t *Table) beginPreFlop() {
	t.publishPhase()
	if t.roundComplete() {
		t.completeRound()
		return
	}
	var from int
	if bb := t.Player(t.lastBetPlayerID); bb != nil {
		from = bb.Seat
	}
	next := t.nextToAct(from)
	if next == nil {
		t.completeRound()
		return
	}
	t.setTurn(next)
}

// beginStreet opens betting on a freshly dealt street, or keeps running the
// board out when nobody is left to bet.
func (t *Table) beginStreet() {
	t.publishPhase()
	if t.needsRunout() {
		t.scheduleStreet()
		return
	}
	next := t.nextToAct(t.dealerSeat)
	if next == nil {
		t.completeRound()
		return
	}
	t.setTurn(next)
}

// advance runs the pending street state.
func (t *Table) advance() {
	if !t.stateMachine.Dispatch(nil) {
		return
	}
	if t.phase.IsBetting() {
		t.beginStreet()
	}
}

// completeRound sweeps the street's bets and moves to the next street.
func (t *Table) completeRound() {
	t.clearTurn()
	t.sweepBets()
	if t.needsRunout() {
		t.scheduleStreet()
		return
	}
	t.advance()
}

// needsRunout reports whether the remaining streets should be dealt without
// betting: two or more players contest and at most one can still act.
func (t *Table) needsRunout() bool {
	contesting, actors := 0, 0
	for _, p := range t.players {
		if p.IsActive {
			contesting++
			if !p.IsAllIn {
				actors++
			}
		}
	}
	return contesting >= 2 && actors <= 1
}

func (t *Table) scheduleStreet() {
	t.sched.Schedule(StreetTask, Token{Generation: t.generation}, t.config.StreetDelay, t.onStreetTimer)
}

func (t *Table) onStreetTimer(tok Token) {
	if tok.Generation != t.generation || !t.phase.IsBetting() {
		t.log.Tracef("Ignoring street timer for generation %d", tok.Generation)
		return
	}
	t.advance()
}

func (t *Table) sweepBets() {
	for _, p := range t.players {
		t.pot += p.CurrentBet
		p.CurrentBet = 0
		p.HasActed = false
	}
	t.currentBet = 0
	t.lastBetPlayerID = ""
}

// contributions lists what everyone put in this hand, clockwise from the
// dealer's left, followed by dead money from players who left.
func (t *Table) contributions() []Contribution {
	var out []Contribution
	for _, p := range t.clockwise() {
		if p.Contributed > 0 {
			out = append(out, Contribution{PlayerID: p.ID, Amount: p.Contributed, Contesting: p.IsActive})
		}
	}
	return append(out, t.departed...)
}

func (t *Table) settleShowdown() {
	t.phase = Showdown
	hands := make(map[string]*HandValue)
	for _, p := range t.contesting() {
		hv := EvaluateHand(p.HoleCards, t.community)
		p.HandValue = &hv
		p.HandDescription = hv.Description
		hands[p.ID] = &hv
		t.log.Debugf("Hand %d: %s shows %s (%s)", t.handNumber, p.Name, p.GetHandString(), hv.Description)
	}

	pots := BuildPots(t.contributions())
	awards := DistributePots(pots, hands)
	t.phase = Settling
	t.payout(pots, awards, false)
	t.endHand(true)
}

// awardUncontested gives every pot to the last player standing.
func (t *Table) awardUncontested(winner *Player, scheduleNext bool) {
	t.clearTurn()
	t.sweepBets()
	pots := []Pot{{Amount: t.pot, Eligible: []string{winner.ID}}}
	t.phase = Settling
	t.payout(pots, []Award{{PlayerID: winner.ID, Amount: t.pot}}, true)
	t.endHand(scheduleNext)
}

func (t *Table) payout(pots []Pot, awards []Award, uncontested bool) {
	var potTotal int64
	for _, p := range pots {
		potTotal += p.Amount
	}
	if potTotal != t.pot {
		t.log.Errorf("Hand %d: pots hold %d but the table pot is %d", t.handNumber, potTotal, t.pot)
	}

	totals := TotalAwarded(awards)
	result := &HandResult{
		HandNumber:  t.handNumber,
		Board:       append([]Card(nil), t.community...),
		Pots:        pots,
		Uncontested: uncontested,
	}
	for _, p := range t.clockwise() {
		amt, ok := totals[p.ID]
		if !ok {
			continue
		}
		p.Chips += amt
		p.IsWinner = true
		result.Winners = append(result.Winners, Winner{
			PlayerID:        p.ID,
			Name:            p.Name,
			Amount:          amt,
			HandDescription: p.HandDescription,
		})
		t.log.Infof("Hand %d: %s wins %d %s", t.handNumber, p.Name, amt, p.HandDescription)
	}
	t.pot = 0
	t.lastResult = result
}

// refundHand returns every contribution when an abandoned hand has nobody to
// award it to. Dead money is split among the refunded players.
func (t *Table) refundHand() {
	t.clearTurn()
	t.sweepBets()
	var refunded []*Player
	for _, p := range t.clockwise() {
		if p.Contributed > 0 {
			p.Chips += p.Contributed
			t.pot -= p.Contributed
			refunded = append(refunded, p)
		}
	}
	if dead := t.pot; dead > 0 {
		if len(refunded) == 0 {
			t.log.Warnf("Hand %d: %d chips of dead money have nobody to go to", t.handNumber, dead)
			t.chipsInPlay -= dead
		} else {
			share := dead / int64(len(refunded))
			rem := dead % int64(len(refunded))
			for i, p := range refunded {
				p.Chips += share
				if i == 0 {
					p.Chips += rem
				}
			}
		}
	}
	t.pot = 0
	t.phase = Settling
	t.lastResult = &HandResult{
		HandNumber: t.handNumber,
		Board:      append([]Card(nil), t.community...),
		Refunded:   true,
	}
	t.endHand(false)
}

// endHand stops the hand's timers, reports the result, benches busted
// players and, when asked, schedules the next deal.
func (t *Table) endHand(scheduleNext bool) {
	t.stateMachine.SetState(nil)
	t.sched.Cancel(StreetTask)
	t.clearTurn()

	n := Notification{Kind: NotifyGameEnd, Message: "Hand abandoned, bets returned"}
	if res := t.lastResult; res != nil && !res.Refunded {
		names := make([]string, len(res.Winners))
		for i, w := range res.Winners {
			names[i] = w.Name
		}
		n.Winner = strings.Join(names, ", ")
		if len(res.Winners) > 0 {
			n.WinningHand = res.Winners[0].HandDescription
		}
		n.Message = fmt.Sprintf("%s wins", n.Winner)
		if n.WinningHand != "" {
			n.Message += " with " + n.WinningHand
		}
	}
	if scheduleNext {
		n.Duration = t.config.NextHandDelay.Milliseconds()
		n.NextGameCountdown = int64((t.config.NextHandDelay + time.Second - 1) / time.Second)
	}
	t.publish(n)

	for _, p := range t.players {
		if p.IsSeated() && p.Chips == 0 && !p.NeedsBuyIn {
			p.IsSittingOut = true
			p.IsReadyToPlay = false
			p.NeedsBuyIn = true
			t.log.Infof("%s is out of chips", p.Name)
			t.eventManager.PublishEvent(EventNeedsBuyIn, p.ID, NeedsBuyIn{
				MinBuyIn:       t.config.MinBuyIn,
				SuggestedBuyIn: t.config.SuggestedBuyIn,
				AvailableSeats: t.availableSeats(),
			})
		}
	}

	if scheduleNext {
		t.sched.Schedule(NextHandTask, Token{Generation: t.generation}, t.config.NextHandDelay, t.onNextHand)
	}
}

func (t *Table) onNextHand(tok Token) {
	if tok.Generation != t.generation || t.phase != Settling {
		t.log.Tracef("Ignoring next hand timer for generation %d", tok.Generation)
		return
	}
	t.toWaiting()
	if !t.maybeStartHand() {
		t.publishWaiting()
	}
}

// checkCollapse abandons the hand when fewer than two seated players are
// still ready to play. All-in players have no decisions left, so sitting out
// does not cost them their claim: if they are all that remains the board is
// dealt out and the hand goes to showdown.
func (t *Table) checkCollapse() {
	if !t.phase.InHand() {
		return
	}
	ready := 0
	for _, p := range t.players {
		if p.IsSeated() && p.IsReadyToPlay && !p.IsSittingOut {
			ready++
		}
	}
	if ready >= 2 {
		return
	}

	for _, p := range t.contesting() {
		if p.IsSittingOut && !p.IsAllIn {
			p.IsActive = false
		}
	}
	c := t.contesting()
	switch {
	case len(c) >= 2 && t.needsRunout():
		if t.activePlayerID != "" {
			// The last player with chips behind still owes a decision.
			return
		}
		t.log.Infof("Hand %d: fewer than two players ready, running the board out", t.handNumber)
		t.runOutBoard()
		return
	case len(c) == 1:
		t.log.Infof("Hand %d: fewer than two players ready, abandoning", t.handNumber)
		t.awardUncontested(c[0], false)
	default:
		t.log.Infof("Hand %d: fewer than two players ready, abandoning", t.handNumber)
		t.refundHand()
	}
	t.toWaiting()
	t.publishWaiting()
}

// runOutBoard deals every remaining street at once and settles at showdown.
func (t *Table) runOutBoard() {
	t.sched.Cancel(StreetTask)
	t.clearTurn()
	t.sweepBets()
	for t.stateMachine.Dispatch(nil) {
		if !t.phase.IsBetting() {
			break
		}
		t.publishPhase()
	}
}

// checkInvariants verifies the bookkeeping the rest of the table relies on.
func (t *Table) checkInvariants() error {
	var total, maxBet int64
	turns := 0
	seats := make(map[int]bool)
	for _, p := range t.players {
		if p.Chips < 0 || p.CurrentBet < 0 {
			return fmt.Errorf("negative stack or bet for %s", p.Name)
		}
		total += p.Chips + p.CurrentBet
		if p.IsActive && p.CurrentBet > maxBet {
			maxBet = p.CurrentBet
		}
		if p.IsTurn {
			turns++
		}
		if p.IsSeated() {
			if p.Seat >= t.config.MaxSeats || seats[p.Seat] {
				return fmt.Errorf("bad or duplicate seat %d for %s", p.Seat, p.Name)
			}
			seats[p.Seat] = true
		}
	}
	total += t.pot
	if total != t.chipsInPlay {
		return fmt.Errorf("chip conservation broken: table holds %d, expected %d", total, t.chipsInPlay)
	}
	if maxBet > t.currentBet {
		return fmt.Errorf("bet %d exceeds table current bet %d", maxBet, t.currentBet)
	}
	if turns > 1 || (turns == 1 && !t.phase.IsBetting()) {
		return fmt.Errorf("%d players hold the turn during %s", turns, t.phase)
	}
	if t.phase.IsBetting() && t.stateMachine.GetCurrentState() == nil {
		return fmt.Errorf("no street left to deal during %s", t.phase)
	}
	want := map[Phase]int{PreFlop: 0, Flop: 3, Turn: 4, River: 5}
	if n, ok := want[t.phase]; ok && len(t.community) != n {
		return fmt.Errorf("%d community cards during %s", len(t.community), t.phase)
	}
	return nil
}
