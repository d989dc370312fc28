package poker

import (
	"fmt"
	"time"

	"github.com/decred/slog"
)

// MaxTableSeats is the largest table the engine runs.
const MaxTableSeats = 6

// TableConfig holds configuration for the poker table
type TableConfig struct {
	Log slog.Logger

	MaxSeats   int
	SmallBlind int64 // Poker chips amount for small blind
	BigBlind   int64 // Poker chips amount for big blind

	MinBuyIn       int64
	SuggestedBuyIn int64
	MaxBuyIn       int64 // 0 means no maximum

	TurnTimeLimit time.Duration // 0 disables the turn timer
	StreetDelay   time.Duration // pacing between streets during an all-in runout
	NextHandDelay time.Duration // pause between settlement and the next deal

	// Seed drives the shuffle. 0 picks a time based seed.
	Seed int64

	// Clock schedules timers. nil uses the wall clock.
	Clock Clock
}

// DefaultTableConfig returns the configuration used when nothing is set.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxSeats:       MaxTableSeats,
		SmallBlind:     10,
		BigBlind:       20,
		MinBuyIn:       200,
		SuggestedBuyIn: 1000,
		MaxBuyIn:       4000,
		TurnTimeLimit:  30 * time.Second,
		StreetDelay:    time.Second,
		NextHandDelay:  5 * time.Second,
	}
}

// Validate checks the config for values the engine cannot run with.
func (c TableConfig) Validate() error {
	switch {
	case c.MaxSeats < 2 || c.MaxSeats > MaxTableSeats:
		return fmt.Errorf("%w: max seats must be between 2 and %d, got %d",
			ErrInvalidConfig, MaxTableSeats, c.MaxSeats)
	case c.SmallBlind <= 0:
		return fmt.Errorf("%w: small blind must be positive", ErrInvalidConfig)
	case c.BigBlind < c.SmallBlind:
		return fmt.Errorf("%w: big blind %d is below small blind %d",
			ErrInvalidConfig, c.BigBlind, c.SmallBlind)
	case c.MinBuyIn < c.BigBlind:
		return fmt.Errorf("%w: minimum buy-in %d is below the big blind %d",
			ErrInvalidConfig, c.MinBuyIn, c.BigBlind)
	case c.MaxBuyIn != 0 && c.MaxBuyIn < c.MinBuyIn:
		return fmt.Errorf("%w: maximum buy-in %d is below minimum %d",
			ErrInvalidConfig, c.MaxBuyIn, c.MinBuyIn)
	case c.SuggestedBuyIn != 0 && (c.SuggestedBuyIn < c.MinBuyIn ||
		(c.MaxBuyIn != 0 && c.SuggestedBuyIn > c.MaxBuyIn)):
		return fmt.Errorf("%w: suggested buy-in %d is outside [%d, %d]",
			ErrInvalidConfig, c.SuggestedBuyIn, c.MinBuyIn, c.MaxBuyIn)
	case c.TurnTimeLimit < 0 || c.StreetDelay < 0 || c.NextHandDelay < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
