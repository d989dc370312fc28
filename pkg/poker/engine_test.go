package poker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEngine(t *testing.T, mutate func(*TableConfig)) (*Engine, context.CancelFunc) {
	t.Helper()
	cfg := DefaultTableConfig()
	cfg.Seed = 7
	cfg.TurnTimeLimit = 200 * time.Millisecond
	cfg.StreetDelay = 10 * time.Millisecond
	cfg.NextHandDelay = 50 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = e.Run(ctx) }()
	go func() {
		for range e.Events() {
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-e.Done()
	})
	return e, cancel
}

func TestEngineHand(t *testing.T) {
	e, _ := startEngine(t, func(c *TableConfig) { c.TurnTimeLimit = time.Minute })
	ctx := context.Background()

	alice, info, err := e.Join(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(200), info.MinBuyIn)
	bob, _, err := e.Join(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, e.BuyIn(ctx, alice, 0, 1000))
	require.ErrorIs(t, e.BuyIn(ctx, bob, 0, 1000), ErrSeatTaken)
	require.NoError(t, e.BuyIn(ctx, bob, 1, 1000))

	gs, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, PreFlop, gs.Phase)
	require.Equal(t, alice, gs.ActivePlayerID)

	assert.ErrorIs(t, e.Act(ctx, bob, Action{Type: ActionCall}), ErrNotYourTurn)
	require.NoError(t, e.Act(ctx, alice, Action{Type: ActionCall}))
	require.NoError(t, e.Act(ctx, bob, Action{Type: ActionCheck}))

	gs, err = e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Flop, gs.Phase)
	assert.Len(t, gs.CommunityCards, 3)
	assert.Equal(t, int64(40), gs.Pot)
}

func TestEngineTurnTimeout(t *testing.T) {
	e, _ := startEngine(t, nil)
	ctx := context.Background()

	a, _, err := e.Join(ctx, "a")
	require.NoError(t, err)
	b, _, err := e.Join(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, e.BuyIn(ctx, a, 0, 1000))
	require.NoError(t, e.BuyIn(ctx, b, 1, 1000))

	require.Eventually(t, func() bool {
		gs, err := e.Snapshot(ctx)
		if err != nil {
			return false
		}
		p, _ := gs.PlayerByID(a)
		return p.IsSittingOut && gs.Phase == WaitingForPlayers
	}, 2*time.Second, 10*time.Millisecond)

	gs, err := e.Snapshot(ctx)
	require.NoError(t, err)
	p, _ := gs.PlayerByID(b)
	assert.Equal(t, int64(1010), p.Chips)
}

func TestEngineConcurrentClients(t *testing.T) {
	e, _ := startEngine(t, func(c *TableConfig) { c.TurnTimeLimit = 0 })
	ctx := context.Background()

	ids := make([]string, MaxTableSeats)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := e.Join(ctx, "")
			assert.NoError(t, err)
			ids[i] = id
			assert.NoError(t, e.BuyIn(ctx, id, i, 1000))
		}(i)
	}
	wg.Wait()

	// Everyone hammers Act; only the player holding the turn gets through.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gs, err := e.Snapshot(ctx)
		require.NoError(t, err)
		if gs.HandNumber >= 3 {
			break
		}
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_ = e.Act(ctx, id, Action{Type: ActionCall})
			}(id)
		}
		wg.Wait()
	}

	gs, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, gs.HandNumber, uint64(3))
	var total int64
	for _, p := range gs.Players {
		total += p.Chips + p.CurrentBet
	}
	assert.Equal(t, int64(6000), total+gs.Pot)
}

func TestEngineStopped(t *testing.T) {
	e, cancel := startEngine(t, nil)
	ctx := context.Background()

	_, _, err := e.Join(ctx, "x")
	require.NoError(t, err)
	cancel()
	<-e.Done()

	_, _, err = e.Join(ctx, "y")
	assert.ErrorIs(t, err, ErrEngineStopped)
	_, err = e.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrEngineStopped)

	_, open := <-e.Events()
	for open {
		_, open = <-e.Events()
	}
}

func TestEngineContextCancelled(t *testing.T) {
	e, err := NewEngine(DefaultTableConfig())
	require.NoError(t, err)

	// Not running: the command can never be taken.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	for i := 0; i < commandQueueSize; i++ {
		e.cmds <- func() {}
	}
	_, _, err = e.Join(ctx, "late")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
