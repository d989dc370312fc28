package poker

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
)

const (
	commandQueueSize = 256
	eventQueueSize   = 1024
)

// Engine owns the table and serializes every mutation through a single
// goroutine. Public methods queue a command and wait for its result; timer
// callbacks are queued the same way.
type Engine struct {
	log    slog.Logger
	table  *Table
	cmds   chan func()
	events chan TableEvent
	done   chan struct{}
}

// NewEngine creates an engine for a table configured by cfg. Run must be
// called for any method to make progress.
func NewEngine(cfg TableConfig) (*Engine, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	e := &Engine{
		log:    log,
		cmds:   make(chan func(), commandQueueSize),
		events: make(chan TableEvent, eventQueueSize),
		done:   make(chan struct{}),
	}
	table, err := NewTable(cfg, e.post, e.events)
	if err != nil {
		return nil, err
	}
	e.table = table
	return e, nil
}

// Events returns the outbound event stream. It is closed when Run returns.
func (e *Engine) Events() <-chan TableEvent {
	return e.events
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Run processes commands until ctx is cancelled. It must be called once.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Infof("Table engine started (%d seats, blinds %d/%d)",
		e.table.config.MaxSeats, e.table.config.SmallBlind, e.table.config.BigBlind)
	defer func() {
		e.table.Stop()
		close(e.done)
		close(e.events)
		e.log.Infof("Table engine stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-e.cmds:
			cmd()
		}
	}
}

// post queues a timer callback. It is the table's dispatch function and is
// called from timer goroutines.
func (e *Engine) post(fn func()) {
	select {
	case e.cmds <- func() {
		fn()
		e.afterMutation()
	}:
	case <-e.done:
	}
}

// exec runs fn on the engine goroutine and returns its error. Accepted
// mutations are followed by a state broadcast.
func (e *Engine) exec(ctx context.Context, fn func() error) error {
	return e.submit(ctx, fn, true)
}

// query runs fn on the engine goroutine without broadcasting.
func (e *Engine) query(ctx context.Context, fn func()) error {
	return e.submit(ctx, func() error {
		fn()
		return nil
	}, false)
}

func (e *Engine) submit(ctx context.Context, fn func() error, mutates bool) error {
	reply := make(chan error, 1)
	cmd := func() {
		err := fn()
		if err == nil && mutates {
			e.afterMutation()
		}
		reply <- err
	}

	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) afterMutation() {
	if err := e.table.checkInvariants(); err != nil {
		e.log.Errorf("Table invariant violated: %v\n%s", err, spew.Sdump(e.table.Snapshot()))
	}
	e.table.PublishState()
}

// Join adds a player to the roster and returns their id with the table's
// seating terms.
func (e *Engine) Join(ctx context.Context, name string) (string, TableInfo, error) {
	var (
		id   string
		info TableInfo
	)
	err := e.exec(ctx, func() error {
		p, ti := e.table.Join(name)
		id, info = p.ID, ti
		return nil
	})
	return id, info, err
}

// BuyIn seats a player.
func (e *Engine) BuyIn(ctx context.Context, playerID string, seat int, amount int64) error {
	return e.exec(ctx, func() error {
		return e.table.BuyIn(playerID, seat, amount)
	})
}

// Act applies a betting action for the player.
func (e *Engine) Act(ctx context.Context, playerID string, a Action) error {
	return e.exec(ctx, func() error {
		return e.table.Apply(playerID, a)
	})
}

// SitOut benches the player.
func (e *Engine) SitOut(ctx context.Context, playerID string) error {
	return e.exec(ctx, func() error {
		return e.table.SitOut(playerID)
	})
}

// SitIn marks the player ready to play.
func (e *Engine) SitIn(ctx context.Context, playerID string) error {
	return e.exec(ctx, func() error {
		return e.table.SitIn(playerID)
	})
}

// AddChips tops up the player's stack.
func (e *Engine) AddChips(ctx context.Context, playerID string, amount int64) error {
	return e.exec(ctx, func() error {
		return e.table.AddChips(playerID, amount)
	})
}

// Leave removes the player from the table.
func (e *Engine) Leave(ctx context.Context, playerID string) error {
	return e.exec(ctx, func() error {
		return e.table.Leave(playerID)
	})
}

// Snapshot returns the unredacted table state.
func (e *Engine) Snapshot(ctx context.Context) (GameState, error) {
	var gs GameState
	err := e.query(ctx, func() {
		gs = e.table.Snapshot()
	})
	return gs, err
}

// TableInfo returns the seating and buy-in terms.
func (e *Engine) TableInfo(ctx context.Context) (TableInfo, error) {
	var info TableInfo
	err := e.query(ctx, func() {
		info = e.table.TableInfo()
	})
	return info, err
}
