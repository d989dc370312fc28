package poker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock fires timers only when Advance is called, on the caller's
// goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, firing due timers in deadline order. Timers
// created by callbacks fire too if they fall inside the window.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.when
		c.mu.Unlock()
		next.f()
	}
}

func testConfig(clock Clock) TableConfig {
	cfg := DefaultTableConfig()
	cfg.Seed = 1
	cfg.Clock = clock
	cfg.TurnTimeLimit = 30 * time.Second
	cfg.StreetDelay = time.Second
	cfg.NextHandDelay = 5 * time.Second
	return cfg
}

func newTestTable(t *testing.T, mutate func(*TableConfig)) (*Table, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cfg := testConfig(clock)
	if mutate != nil {
		mutate(&cfg)
	}
	tbl, err := NewTable(cfg, nil, nil)
	require.NoError(t, err)
	return tbl, clock
}

// seatPlayers seats one player per stack at seats 0..n-1 without going
// through BuyIn, so no hand starts until all of them are in.
func seatPlayers(t *testing.T, tbl *Table, stacks ...int64) []*Player {
	t.Helper()
	players := make([]*Player, len(stacks))
	for i, chips := range stacks {
		p, _ := tbl.Join(fmt.Sprintf("P%d", i))
		p.Seat = i
		p.Chips = chips
		p.IsSittingOut = false
		p.IsReadyToPlay = true
		tbl.chipsInPlay += chips
		players[i] = p
	}
	return players
}

// startHand seats the players and deals the first hand.
func startHand(t *testing.T, tbl *Table, stacks ...int64) []*Player {
	t.Helper()
	players := seatPlayers(t, tbl, stacks...)
	require.True(t, tbl.maybeStartHand())
	require.NoError(t, tbl.checkInvariants())
	return players
}

// rig replaces dealt hole cards and the remaining deck so the board comes
// out as given.
func rig(tbl *Table, holes map[*Player]string, board string) {
	for p, cards := range holes {
		p.HoleCards = MustParseCards(cards)
	}
	tbl.deck = NewDeckFromCards(MustParseCards(board))
}

func act(t *testing.T, tbl *Table, p *Player, typ ActionType, amount int64) {
	t.Helper()
	require.NoError(t, tbl.Apply(p.ID, Action{Type: typ, Amount: amount}))
	require.NoError(t, tbl.checkInvariants())
}

func totalChips(tbl *Table) int64 {
	total := tbl.pot
	for _, p := range tbl.players {
		total += p.Chips + p.CurrentBet
	}
	return total
}
