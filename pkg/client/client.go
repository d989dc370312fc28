package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/decred/slog"

	"github.com/vctt94/holdemtable/pkg/poker"
	"github.com/vctt94/holdemtable/pkg/rpc/pokerws"
)

// ErrClosed is returned by calls made after the connection went away.
var ErrClosed = errors.New("client closed")

// Message is a server message with its data left raw. Use the Decode
// helpers to read it.
type Message struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// Decode unmarshals the message data into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s message has no data", m.Type)
	}
	return json.Unmarshal(m.Data, v)
}

// Config describes where and as whom to connect.
type Config struct {
	// ServerURL is the http(s) base URL of the table server.
	ServerURL string
	Name      string
	Log       slog.Logger

	// UpdatesSize is the capacity of the Updates channel. Messages that
	// arrive while it is full are dropped.
	UpdatesSize int
	// WriteTimeout bounds each send. Defaults to 5s.
	WriteTimeout time.Duration
}

// PokerClient is one seat's connection to a table server.
type PokerClient struct {
	sync.RWMutex
	ID        string
	TableInfo poker.TableInfo

	cfg   Config
	log   slog.Logger
	ws    *websocket.Conn
	state poker.GameState

	// UpdatesCh receives every message the server sends after the welcome.
	UpdatesCh chan Message
	// ErrorsCh receives the error that ended the read loop.
	ErrorsCh chan error

	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Dial connects to the server, waits for the welcome and starts reading.
func Dial(ctx context.Context, cfg Config) (*PokerClient, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.UpdatesSize <= 0 {
		cfg.UpdatesSize = 100
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	wsURL, err := socketURL(cfg.ServerURL, cfg.Name)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	pc := &PokerClient{
		cfg:       cfg,
		log:       cfg.Log,
		ws:        ws,
		UpdatesCh: make(chan Message, cfg.UpdatesSize),
		ErrorsCh:  make(chan error, 1),
		done:      make(chan struct{}),
	}

	msg, err := pc.read(ctx)
	if err == nil && msg.Type != pokerws.MsgJoined {
		err = fmt.Errorf("expected %s, got %s", pokerws.MsgJoined, msg.Type)
	}
	var welcome pokerws.Welcome
	if err == nil {
		err = msg.Decode(&welcome)
	}
	if err != nil {
		ws.CloseNow()
		return nil, fmt.Errorf("failed to join table: %w", err)
	}
	pc.ID, pc.TableInfo = welcome.PlayerID, welcome.TableInfo
	pc.log.Debugf("Joined table as %s", pc.ID)

	pc.ctx, pc.cancelFunc = context.WithCancel(context.Background())
	go pc.readLoop()
	return pc, nil
}

func socketURL(base, name string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme", base)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	if name != "" {
		u.RawQuery = url.Values{"name": {name}}.Encode()
	}
	return u.String(), nil
}

func (pc *PokerClient) read(ctx context.Context) (Message, error) {
	_, b, err := pc.ws.Read(ctx)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	if err := json.Unmarshal(b, &msg); err != nil {
		return Message{}, fmt.Errorf("bad message from server: %w", err)
	}
	return msg, nil
}

// readLoop keeps the latest game state and forwards everything to
// UpdatesCh. It owns closing done.
func (pc *PokerClient) readLoop() {
	defer close(pc.done)
	for {
		msg, err := pc.read(pc.ctx)
		if err != nil {
			if pc.ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				pc.ErrorsCh <- fmt.Errorf("game stream error: %w", err)
			}
			pc.log.Info("Game stream closed")
			return
		}

		if msg.Type == pokerws.MsgGameState {
			var gs poker.GameState
			if err := msg.Decode(&gs); err != nil {
				pc.log.Warnf("Bad game state: %v", err)
				continue
			}
			pc.Lock()
			pc.state = gs
			pc.Unlock()
		}

		select {
		case pc.UpdatesCh <- msg:
		default:
			pc.log.Warnf("Updates channel full, dropping %s", msg.Type)
		}
	}
}

// State returns the most recent game state received.
func (pc *PokerClient) State() poker.GameState {
	pc.RLock()
	defer pc.RUnlock()
	return pc.state
}

// Done is closed once the connection is gone.
func (pc *PokerClient) Done() <-chan struct{} {
	return pc.done
}

// Close leaves the table and closes the connection.
func (pc *PokerClient) Close() error {
	err := pc.ws.Close(websocket.StatusNormalClosure, "")
	pc.cancelFunc()
	<-pc.done
	return err
}

func (pc *PokerClient) send(ctx context.Context, msg pokerws.ClientMessage) error {
	select {
	case <-pc.done:
		return ErrClosed
	default:
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pc.cfg.WriteTimeout)
	defer cancel()
	if err := pc.ws.Write(ctx, websocket.MessageText, b); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

// FetchTable reads the public snapshot from the server's /table endpoint.
func FetchTable(ctx context.Context, serverURL string) (poker.GameState, error) {
	var gs poker.GameState
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(serverURL, "/")+"/table", nil)
	if err != nil {
		return gs, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return gs, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return gs, fmt.Errorf("GET /table: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&gs); err != nil {
		return gs, fmt.Errorf("failed to decode table: %w", err)
	}
	return gs, nil
}
