package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

var errUnknownMessage = errors.New("unknown message type")

var errorCodes = []struct {
	err  error
	code string
}{
	{poker.ErrNotYourTurn, "not-your-turn"},
	{poker.ErrIllegalCheck, "illegal-check"},
	{poker.ErrRaiseTooSmall, "raise-too-small"},
	{poker.ErrUnknownAction, "unknown-action"},
	{poker.ErrBuyInTooSmall, "buy-in-too-small"},
	{poker.ErrBuyInTooLarge, "buy-in-too-large"},
	{poker.ErrSeatTaken, "seat-taken"},
	{poker.ErrAlreadySeated, "already-seated"},
	{poker.ErrNotSeated, "not-seated"},
	{poker.ErrNoChips, "no-chips"},
	{poker.ErrHandInProgress, "hand-in-progress"},
	{poker.ErrUnknownPlayer, "unknown-player"},
	{poker.ErrEngineStopped, "engine-stopped"},
	{errUnknownMessage, "bad-request"},
}

func errorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "internal"
}

// handleWS joins the caller to the table and serves their socket until it
// closes. Closing the socket is the same as leaving the table.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		s.log.Warnf("WebSocket accept from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer ws.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id, info, err := s.engine.Join(ctx, r.URL.Query().Get("name"))
	if err != nil {
		s.log.Warnf("Join from %s failed: %v", r.RemoteAddr, err)
		ws.Close(websocket.StatusTryAgainLater, "table unavailable")
		return
	}

	pc := newPlayerConn(id, ws, s.cfg.SendQueueSize)
	pc.enqueue(pokerws.Message{Type: pokerws.MsgJoined, Data: pokerws.Welcome{PlayerID: id, TableInfo: info}})
	s.register(pc)
	go s.writeLoop(ctx, cancel, pc)

	if gs, err := s.engine.Snapshot(ctx); err == nil {
		s.sendState(pc, gs)
	}

	s.readLoop(ctx, pc)

	s.unregister(pc)
	leaveCtx, leaveCancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer leaveCancel()
	if err := s.engine.Leave(leaveCtx, id); err != nil && !errors.Is(err, poker.ErrEngineStopped) {
		s.log.Warnf("Player %s leave failed: %v", id, err)
	}
	s.log.Infof("Player %s disconnected", id)
	ws.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) readLoop(ctx context.Context, pc *playerConn) {
	for {
		typ, data, err := pc.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					s.log.Debugf("Read from player %s failed: %v", pc.id, err)
				}
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg pokerws.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			pc.enqueue(pokerws.Message{Type: pokerws.MsgError, Reason: "invalid JSON", Code: "bad-request"})
			continue
		}
		s.handleMessage(ctx, pc, msg)
	}
}

// handleMessage runs one client request against the engine and answers
// rejections on the sender's socket.
func (s *Server) handleMessage(ctx context.Context, pc *playerConn, msg pokerws.ClientMessage) {
	var (
		err     error
		errType = pokerws.MsgError
	)
	switch msg.Type {
	case pokerws.MsgBuyIn:
		err = s.engine.BuyIn(ctx, pc.id, msg.Seat, msg.Amount)
		errType = pokerws.MsgBuyInError
	case pokerws.MsgAction:
		err = s.engine.Act(ctx, pc.id, poker.Action{Type: msg.Action, Amount: msg.Amount})
		errType = pokerws.MsgActionRejected
	case pokerws.MsgSitOut:
		err = s.engine.SitOut(ctx, pc.id)
	case pokerws.MsgSitIn:
		err = s.engine.SitIn(ctx, pc.id)
	case pokerws.MsgAddChips:
		err = s.engine.AddChips(ctx, pc.id, msg.Amount)
	case pokerws.MsgPing:
		pc.enqueue(pokerws.Message{Type: pokerws.MsgPong})
		return
	default:
		err = fmt.Errorf("%w %q", errUnknownMessage, msg.Type)
	}
	if err == nil || ctx.Err() != nil {
		return
	}

	s.log.Debugf("Player %s %s rejected: %v", pc.id, msg.Type, err)
	pc.enqueue(pokerws.Message{Type: errType, Reason: err.Error(), Code: errorCode(err)})
}

// handleTable serves the public snapshot.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	gs, err := s.engine.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(gs.ForPlayer("")); err != nil {
		s.log.Warnf("Encode table snapshot: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.engine.Done():
		http.Error(w, "engine stopped", http.StatusServiceUnavailable)
	default:
		w.Write([]byte("ok\n"))
	}
}
