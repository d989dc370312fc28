package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/holdemtable/pkg/poker"
)

const (
	defaultWriteTimeout  = 5 * time.Second
	defaultSendQueueSize = 64
	leaveTimeout         = 5 * time.Second
)

// Config holds the websocket server settings.
type Config struct {
	Log slog.Logger

	// OriginPatterns lists the hosts allowed to open a socket from a browser.
	// Empty means same origin only.
	OriginPatterns []string

	WriteTimeout  time.Duration
	SendQueueSize int
}

// Server exposes one table engine over websockets.
type Server struct {
	log    slog.Logger
	cfg    Config
	engine *poker.Engine
	mux    *http.ServeMux

	connMu sync.RWMutex
	conns  map[string]*playerConn
}

// NewServer creates a server for engine. Run must be called to deliver
// table events to connected players.
func NewServer(engine *poker.Engine, cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = defaultSendQueueSize
	}
	s := &Server{
		log:    cfg.Log,
		cfg:    cfg,
		engine: engine,
		mux:    http.NewServeMux(),
		conns:  make(map[string]*playerConn),
	}
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /table", s.handleTable)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// ServeHTTP logs and routes a request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Debugf("%s %s from %s (%v)", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
}

func (s *Server) register(pc *playerConn) {
	s.connMu.Lock()
	s.conns[pc.id] = pc
	n := len(s.conns)
	s.connMu.Unlock()
	s.log.Infof("Player %s connected (%d connections)", pc.id, n)
}

func (s *Server) unregister(pc *playerConn) {
	s.connMu.Lock()
	if s.conns[pc.id] == pc {
		delete(s.conns, pc.id)
	}
	s.connMu.Unlock()
}

// connections returns the current connections.
func (s *Server) connections() []*playerConn {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	out := make([]*playerConn, 0, len(s.conns))
	for _, pc := range s.conns {
		out = append(out, pc)
	}
	return out
}

func (s *Server) connection(playerID string) *playerConn {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conns[playerID]
}
