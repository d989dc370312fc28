package statemachine

// StateFn represents a state function following Rob Pike's pattern.
// Running a state performs its work and returns the state to run next;
// nil means the machine has nothing left to do.
type StateFn[T any] func(*T) StateFn[T]

// StateMachine drives state functions for a single entity.
//
// It is not safe for concurrent use: callers are expected to own the entity
// from a single goroutine (the table engine serializes every mutation).
type StateMachine[T any] struct {
	entity  *T
	stateFn StateFn[T]
}

// NewStateMachine creates a new state machine for the given entity
func NewStateMachine[T any](entity *T, initialStateFn StateFn[T]) *StateMachine[T] {
	return &StateMachine[T]{
		entity:  entity,
		stateFn: initialStateFn,
	}
}

// Dispatch runs the current state once and transitions to the returned state.
// If stateFn is non-nil it replaces the current state before running.
// It reports whether a state was executed.
func (sm *StateMachine[T]) Dispatch(stateFn StateFn[T]) bool {
	if stateFn != nil {
		sm.stateFn = stateFn
	}
	if sm.stateFn == nil {
		return false
	}
	current := sm.stateFn
	sm.stateFn = current(sm.entity)
	return true
}

// GetCurrentState returns the state that the next Dispatch will run.
func (sm *StateMachine[T]) GetCurrentState() StateFn[T] {
	return sm.stateFn
}

// SetState sets the next state without running it.
func (sm *StateMachine[T]) SetState(stateFn StateFn[T]) {
	sm.stateFn = stateFn
}
