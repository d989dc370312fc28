// This file contains end-to-end tests that spin up the full table server: the
// engine, the websocket layer and real HTTP connections. Only the network is
// in-process via httptest.
//
// To keep the tests self-contained and independent they **must** be executed
// with `go test ./...` and **should not** depend on external resources.

package e2e

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vctt94/holdemtable/pkg/client"
	"github.com/vctt94/holdemtable/pkg/logging"
	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
	"github.com/vctt94/holdemtable/pkg/server"
)

// testEnv holds the runtime components that make up a running table server.
// Each E2E test spins up its own env so tests are isolated and can run in
// parallel.
type testEnv struct {
	t      *testing.T
	engine *poker.Engine
	srv    *server.Server
	http   *httptest.Server
	cancel context.CancelFunc
	group  *errgroup.Group
}

// player wraps a table client and records everything it receives.
type player struct {
	t    *testing.T
	name string
	id   string
	pc   *client.PokerClient

	mu   sync.Mutex
	msgs []client.Message
}

// newTestEnv creates, starts and returns a ready-to-use environment.
func newTestEnv(t *testing.T, mutate func(*poker.TableConfig)) *testEnv {
	t.Helper()

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: "error"})
	require.NoError(t, err)

	cfg := poker.DefaultTableConfig()
	cfg.Log = logBackend.Logger("TABL")
	cfg.Seed = 42
	cfg.TurnTimeLimit = 5 * time.Second
	cfg.StreetDelay = 20 * time.Millisecond
	cfg.NextHandDelay = 100 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := poker.NewEngine(cfg)
	require.NoError(t, err)
	srv := server.NewServer(engine, server.Config{Log: logBackend.Logger("SRVR")})

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	env := &testEnv{
		t:      t,
		engine: engine,
		srv:    srv,
		http:   httptest.NewServer(srv),
		cancel: cancel,
		group:  g,
	}
	t.Cleanup(func() {
		env.Close()
		logBackend.Close()
	})
	return env
}

// Close gracefully shuts down all resources.
func (e *testEnv) Close() {
	e.cancel()
	_ = e.group.Wait()
	e.http.Close()
}

// connect joins the table as name.
func (e *testEnv) connect(name string) *player {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pc, err := client.Dial(ctx, client.Config{ServerURL: e.http.URL, Name: name, UpdatesSize: 1024})
	require.NoError(e.t, err)
	e.t.Cleanup(func() { pc.Close() })

	p := &player{t: e.t, name: name, id: pc.ID, pc: pc}
	go p.record()
	return p
}

func (p *player) record() {
	for {
		select {
		case msg := <-p.pc.UpdatesCh:
			p.mu.Lock()
			p.msgs = append(p.msgs, msg)
			p.mu.Unlock()
		case <-p.pc.Done():
			return
		}
	}
}

// find returns the first recorded message of the given type.
func (p *player) find(typ string) (client.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.msgs {
		if m.Type == typ {
			return m, true
		}
	}
	return client.Message{}, false
}

func (p *player) waitFor(typ string, timeout time.Duration) client.Message {
	p.t.Helper()
	var msg client.Message
	require.Eventually(p.t, func() bool {
		var ok bool
		msg, ok = p.find(typ)
		return ok
	}, timeout, 10*time.Millisecond, "%s never received %s", p.name, typ)
	return msg
}

func (p *player) act(action poker.ActionType, amount int64) {
	p.t.Helper()
	require.NoError(p.t, p.pc.Act(context.Background(), action, amount))
}

// table fetches the public snapshot.
func (e *testEnv) table() poker.GameState {
	e.t.Helper()
	gs, err := client.FetchTable(context.Background(), e.http.URL)
	require.NoError(e.t, err)
	return gs
}

// waitForTable polls the public snapshot until cond holds or the timeout
// expires (in which case the test fails).
func (e *testEnv) waitForTable(cond func(poker.GameState) bool, timeout time.Duration) poker.GameState {
	e.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		gs := e.table()
		if cond(gs) {
			return gs
		}
		if time.Now().After(deadline) {
			e.t.Fatalf("table never reached the expected state, last phase %s hand %d", gs.Phase, gs.HandNumber)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (e *testEnv) waitForGamePhase(phase poker.Phase, timeout time.Duration) poker.GameState {
	e.t.Helper()
	return e.waitForTable(func(gs poker.GameState) bool { return gs.Phase == phase }, timeout)
}

// seat buys every player in at consecutive seats.
func (e *testEnv) seat(amount int64, players ...*player) {
	e.t.Helper()
	for i, p := range players {
		require.NoError(e.t, p.pc.BuyIn(context.Background(), i, amount))
		e.waitForTable(func(gs poker.GameState) bool {
			ps, ok := gs.PlayerByID(p.id)
			return ok && ps.Seat == i
		}, 2*time.Second)
	}
}

func chipsOnTable(gs poker.GameState) int64 {
	total := gs.Pot
	for _, p := range gs.Players {
		total += p.Chips + p.CurrentBet
	}
	return total
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: three players calling down several hands
//
// -----------------------------------------------------------------------------
func TestCallingStationsEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	players := map[string]*player{}
	alice, bob, carol := env.connect("alice"), env.connect("bob"), env.connect("carol")
	for _, p := range []*player{alice, bob, carol} {
		players[p.id] = p
	}
	env.seat(1_000, alice, bob, carol)

	sawCarolDealt := false
	deadline := time.Now().Add(10 * time.Second)
	for {
		gs := env.table()
		require.Equal(t, int64(3_000), chipsOnTable(gs), "chips must be conserved (phase %s)", gs.Phase)
		if gs.HandNumber >= 2 {
			if c, _ := gs.PlayerByID(carol.id); c.HasCards {
				sawCarolDealt = true
			}
		}
		if gs.HandNumber >= 4 {
			break
		}
		require.True(t, time.Now().Before(deadline), "stuck at hand %d phase %s", gs.HandNumber, gs.Phase)

		if p, ok := players[gs.ActivePlayerID]; ok {
			p.act(poker.ActionCall, 0)
			env.waitForTable(func(next poker.GameState) bool {
				return next.ActivePlayerID != gs.ActivePlayerID || next.Phase != gs.Phase ||
					next.HandNumber != gs.HandNumber
			}, 2*time.Second)
			continue
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, sawCarolDealt, "a player seated mid-hand joins the next deal")

	for _, p := range []*player{alice, bob, carol} {
		p.waitFor(pokerws.MsgNotification, time.Second)
		_, rejected := p.find(pokerws.MsgActionRejected)
		assert.False(t, rejected, "%s had an action rejected", p.name)
	}
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: a player who never acts times out and is benched
//
// -----------------------------------------------------------------------------
func TestTurnTimeoutEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(c *poker.TableConfig) { c.TurnTimeLimit = 300 * time.Millisecond })

	alice, bob := env.connect("alice"), env.connect("bob")
	env.seat(1_000, alice, bob)

	gs := env.waitForTable(func(gs poker.GameState) bool {
		return gs.HandNumber == 1 && gs.TurnDeadline != nil
	}, 2*time.Second)
	require.Equal(t, alice.id, gs.ActivePlayerID, "heads-up dealer acts first")

	gs = env.waitForGamePhase(poker.WaitingForPlayers, 3*time.Second)
	a, _ := gs.PlayerByID(alice.id)
	b, _ := gs.PlayerByID(bob.id)
	assert.True(t, a.IsSittingOut)
	assert.Equal(t, int64(990), a.Chips)
	assert.Equal(t, int64(1_010), b.Chips)

	// Sitting back in deals the next hand right away.
	require.NoError(t, alice.pc.SitIn(context.Background()))
	env.waitForTable(func(gs poker.GameState) bool { return gs.HandNumber == 2 }, 2*time.Second)
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: all-in pre-flop, board runs out, loser rebuys
//
// -----------------------------------------------------------------------------
func TestAllInRebuyEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(c *poker.TableConfig) { c.NextHandDelay = time.Second })

	alice, bob := env.connect("alice"), env.connect("bob")
	byID := map[string]*player{alice.id: alice, bob.id: bob}
	env.seat(1_000, alice, bob)
	env.waitForGamePhase(poker.PreFlop, 2*time.Second)

	alice.act(poker.ActionRaise, 1_000)
	env.waitForTable(func(gs poker.GameState) bool { return gs.ActivePlayerID == bob.id }, 2*time.Second)
	bob.act(poker.ActionCall, 0)

	gs := env.waitForGamePhase(poker.Settling, 2*time.Second)
	require.NotNil(t, gs.LastResult)
	assert.Len(t, gs.CommunityCards, 5)
	assert.Equal(t, int64(2_000), chipsOnTable(gs))

	var loser *player
	for _, ps := range gs.Players {
		if ps.Chips == 0 {
			loser = byID[ps.ID]
		}
	}
	if loser == nil {
		// A split pot leaves nobody busted.
		return
	}
	showdown, _ := gs.PlayerByID(loser.id)
	assert.NotEmpty(t, showdown.HoleCards, "hands that reach showdown are public")

	loser.waitFor(pokerws.MsgNeedsBuyIn, 2*time.Second)
	require.NoError(t, loser.pc.AddChips(context.Background(), 500))
	require.NoError(t, loser.pc.SitIn(context.Background()))

	gs = env.waitForTable(func(gs poker.GameState) bool {
		return gs.HandNumber == 2 && gs.Phase.IsBetting()
	}, 3*time.Second)
	assert.Equal(t, int64(2_500), chipsOnTable(gs))
	back, _ := gs.PlayerByID(loser.id)
	assert.True(t, back.IsActive)
}
