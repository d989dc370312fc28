// Package pokerws defines the JSON messages exchanged over the table
// websocket. Every message is an object with a "type" field.
package pokerws

import (
	"github.com/vctt94/holdemtable/pkg/poker"
)

// Server to client message types.
const (
	MsgJoined         = "joined"
	MsgGameState      = "gameState"
	MsgNotification   = "notification"
	MsgNeedsBuyIn     = "needsBuyIn"
	MsgBuyInError     = "buyInError"
	MsgActionRejected = "actionRejected"
	MsgError          = "error"
	MsgPong           = "pong"
)

// Client to server message types.
const (
	MsgBuyIn    = "buyIn"
	MsgAction   = "action"
	MsgSitOut   = "sitOut"
	MsgSitIn    = "sitIn"
	MsgAddChips = "addChips"
	MsgPing     = "ping"
)

// Message is the envelope for everything the server sends.
type Message struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// Welcome is the data of the joined message.
type Welcome struct {
	PlayerID  string          `json:"playerId"`
	TableInfo poker.TableInfo `json:"tableInfo"`
}

// ClientMessage is anything a player sends. Only the fields its type needs
// are read.
type ClientMessage struct {
	Type   string           `json:"type"`
	Seat   int              `json:"seat"`
	Amount int64            `json:"amount"`
	Action poker.ActionType `json:"action"`
}
