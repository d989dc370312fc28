package server

import (
	"context"

	"github.com/coder/websocket"

	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
	"github.com/vctt94/holdemtable/pkg/utils"
)

// Run delivers table events to connected players until the engine's event
// stream closes or ctx ends. Connections are closed on return.
func (s *Server) Run(ctx context.Context) error {
	defer s.closeAll()
	events := s.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.handleEvent(ev)
		}
	}
}

func (s *Server) handleEvent(ev poker.TableEvent) {
	switch ev.Type {
	case poker.EventGameState:
		gs, ok := ev.Payload.(poker.GameState)
		if !ok {
			s.log.Warnf("gameState event without a GameState payload")
			return
		}
		if gs.Phase == poker.Settling && gs.LastResult != nil {
			s.log.Debugf("Hand %d settled, board %s", gs.HandNumber, utils.FormatCards(gs.LastResult.Board))
		}
		for _, pc := range s.connections() {
			s.sendState(pc, gs)
		}

	case poker.EventNotification, poker.EventNeedsBuyIn:
		msg := pokerws.Message{Type: string(ev.Type), Data: ev.Payload}
		if ev.PlayerID != "" {
			s.sendToPlayer(ev.PlayerID, msg)
			return
		}
		s.broadcast(msg)

	default:
		s.log.Warnf("Unknown table event %q", ev.Type)
	}
}

// sendState queues the snapshot as the connection's player may see it.
func (s *Server) sendState(pc *playerConn, gs poker.GameState) {
	if !pc.enqueue(pokerws.Message{Type: pokerws.MsgGameState, Data: gs.ForPlayer(pc.id)}) {
		s.log.Warnf("Send queue full for player %s, dropping state", pc.id)
	}
}

func (s *Server) closeAll() {
	for _, pc := range s.connections() {
		pc.ws.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
