package poker

import (
	"github.com/decred/slog"
)

// EventType is the kind of message a table event carries.
type EventType string

const (
	EventGameState    EventType = "gameState"
	EventNotification EventType = "notification"
	EventNeedsBuyIn   EventType = "needsBuyIn"
)

// NotificationKind classifies a notification.
type NotificationKind string

const (
	NotifyDealing           NotificationKind = "dealing"
	NotifyPhaseChange       NotificationKind = "phase-change"
	NotifyActionRequired    NotificationKind = "action-required"
	NotifyGameEnd           NotificationKind = "game-end"
	NotifyWaitingForPlayers NotificationKind = "waiting-for-players"
)

// TableEvent represents a table event with type and payload
type TableEvent struct {
	Type EventType
	// PlayerID is the recipient; empty means everyone at the table.
	PlayerID string
	Payload  interface{}
}

// Notification carries timing and result hints for clients. Nothing in the
// engine depends on them being delivered.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Phase   Phase            `json:"phase"`
	// PlayerID is the player the notification is about, if any.
	PlayerID          string `json:"playerId,omitempty"`
	Duration          int64  `json:"duration,omitempty"` // milliseconds
	Winner            string `json:"winner,omitempty"`
	WinningHand       string `json:"winningHand,omitempty"`
	NextGameCountdown int64  `json:"nextGameCountdown,omitempty"` // seconds
}

// NeedsBuyIn is sent to a player whose stack ran out.
type NeedsBuyIn struct {
	MinBuyIn       int64 `json:"minBuyIn"`
	SuggestedBuyIn int64 `json:"suggestedBuyIn"`
	AvailableSeats []int `json:"availableSeats"`
}

// TableEventManager handles notifications and state updates for table events
type TableEventManager struct {
	log          slog.Logger
	eventChannel chan<- TableEvent
}

// NewTableEventManager creates a manager publishing to ch. A nil channel
// discards events.
func NewTableEventManager(log slog.Logger, ch chan<- TableEvent) *TableEventManager {
	return &TableEventManager{log: log, eventChannel: ch}
}

// setEventChannel replaces the channel events are published to.
func (tem *TableEventManager) setEventChannel(eventChannel chan<- TableEvent) {
	tem.eventChannel = eventChannel
}

// PublishEvent publishes an event to the channel without blocking. Events
// that do not fit are dropped.
func (tem *TableEventManager) PublishEvent(eventType EventType, playerID string, payload interface{}) {
	if tem.eventChannel == nil {
		return
	}
	select {
	case tem.eventChannel <- TableEvent{
		Type:     eventType,
		PlayerID: playerID,
		Payload:  payload,
	}:
	default:
		tem.log.Warnf("Event channel full, dropping %s event", eventType)
	}
}
