package poker

import "errors"

// Rejections returned by table operations. Callers compare with errors.Is;
// the table wraps them with context.
var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrIllegalCheck   = errors.New("cannot check facing a bet")
	ErrRaiseTooSmall  = errors.New("raise is below the minimum")
	ErrUnknownAction  = errors.New("unknown action")
	ErrBuyInTooSmall  = errors.New("amount is below the minimum buy-in")
	ErrBuyInTooLarge  = errors.New("amount is above the maximum buy-in")
	ErrSeatTaken      = errors.New("seat is not available")
	ErrAlreadySeated  = errors.New("player is already seated")
	ErrNotSeated      = errors.New("player is not seated")
	ErrNoChips        = errors.New("player has no chips")
	ErrHandInProgress = errors.New("player is in a hand")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrEngineStopped  = errors.New("engine stopped")
	ErrInvalidConfig  = errors.New("invalid table config")
)
