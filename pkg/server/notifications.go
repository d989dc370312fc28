package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/coder/websocket"

	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

// playerConn is one player's socket and its outbound queue. A single writer
// goroutine drains the queue so slow clients never hold up the fan-out.
type playerConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

func newPlayerConn(id string, ws *websocket.Conn, queueSize int) *playerConn {
	return &playerConn{id: id, ws: ws, send: make(chan []byte, queueSize)}
}

// enqueue queues msg without blocking. It reports false when the queue is
// full and the message was dropped.
func (pc *playerConn) enqueue(msg pokerws.Message) bool {
	b, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	select {
	case pc.send <- b:
		return true
	default:
		return false
	}
}

// writeLoop sends queued messages until ctx ends or a write fails. It
// cancels ctx on the way out so the read loop stops too.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, pc *playerConn) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-pc.send:
			wctx, wcancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
			err := pc.ws.Write(wctx, websocket.MessageText, b)
			wcancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.Warnf("Write to player %s failed: %v", pc.id, err)
				}
				return
			}
		}
	}
}

// sendToPlayer queues msg for one player if they are connected.
func (s *Server) sendToPlayer(playerID string, msg pokerws.Message) {
	pc := s.connection(playerID)
	if pc == nil {
		return
	}
	if !pc.enqueue(msg) {
		s.log.Warnf("Send queue full for player %s, dropping %s", playerID, msg.Type)
	}
}

// broadcast queues msg for every connected player.
func (s *Server) broadcast(msg pokerws.Message) {
	for _, pc := range s.connections() {
		if !pc.enqueue(msg) {
			s.log.Warnf("Send queue full for player %s, dropping %s", pc.id, msg.Type)
		}
	}
}
