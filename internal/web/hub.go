package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	sendBuffer     = 64

	// DefaultHistoryLimit is how many past messages a new connection gets
	DefaultHistoryLimit = 50
)

// Event types written to chat connections
const (
	EventHistory = "history"
	EventMessage = "message"
	EventError   = "error"
)

// Event is one frame sent to a chat connection
type Event struct {
	Type     string                  `json:"type"`
	Messages []*entities.ChatMessage `json:"messages,omitempty"`
	Message  *entities.ChatMessage   `json:"message,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Post is one frame read from a chat connection
type Post struct {
	Text string `json:"text"`
}

// ConnRecorder counts open chat connections
type ConnRecorder interface {
	ClientConnected()
	ClientDisconnected()
}

type noopConnRecorder struct{}

func (noopConnRecorder) ClientConnected()    {}
func (noopConnRecorder) ClientDisconnected() {}

// HubConfig holds dependencies for the chat hub
type HubConfig struct {
	Social       social.Service
	Recorder     ConnRecorder
	HistoryLimit int
	Logger       *slog.Logger
}

// Validate validates the config
func (c *HubConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Social == nil {
		vb.RequiredField("social")
	}
	if c.HistoryLimit < 0 {
		vb.Field("history_limit", "must not be negative")
	}
	return vb.Build()
}

// Hub bridges websocket connections to world chat. Fan-out between server
// instances happens in the chat repository, so each connection carries its
// own subscription and the hub only tracks connections.
type Hub struct {
	social   social.Service
	recorder ConnRecorder
	history  int
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	count   *atomic.Int64
}

type client struct {
	username string
	conn     *websocket.Conn
	send     chan Event
}

// NewHub creates a chat hub
func NewHub(cfg *HubConfig) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = noopConnRecorder{}
	}
	history := cfg.HistoryLimit
	if history == 0 {
		history = DefaultHistoryLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		social:   cfg.Social,
		recorder: recorder,
		history:  history,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		count:   atomic.NewInt64(0),
	}, nil
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int64 {
	return h.count.Load()
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.count.Inc()
	h.recorder.ClientConnected()
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.count.Dec()
	h.recorder.ClientDisconnected()
}

// ServeHTTP upgrades /ws/chat?user=<name>. History and the subscription
// are fetched before the upgrade so a banned or unknown caller gets a
// plain HTTP error.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user is required"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	history, err := h.social.ListChat(ctx, &social.ListChatInput{Caller: username, Limit: h.history})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sub, err := h.social.SubscribeChat(ctx, &social.SubscribeChatInput{Caller: username})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Warn("failed to close chat subscription", "username", username, "error", err)
		}
	}()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "username", username, "error", err)
		return
	}
	c := &client{username: username, conn: conn, send: make(chan Event, sendBuffer)}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	defer h.unregister(c)

	c.send <- Event{Type: EventHistory, Messages: history.Messages}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ctx, cancel, c, sub.Messages)
	}()
	h.readPump(ctx, c)
	cancel()
	<-done
}

// readPump turns client frames into chat posts until the connection fails
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var post Post
		if err := c.conn.ReadJSON(&post); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("chat connection closed", "username", c.username, "error", err)
			}
			return
		}

		_, err := h.social.PostChat(ctx, &social.PostChatInput{Caller: c.username, Text: post.Text})
		if err == nil {
			continue
		}
		msg := "message rejected"
		var e *errors.Error
		if errors.As(err, &e) && e.Code != errors.CodeInternal && e.Code != errors.CodeUnavailable {
			msg = e.Message
		} else {
			h.logger.Error("chat post failed", "username", c.username, "error", err)
		}
		select {
		case c.send <- Event{Type: EventError, Error: msg}:
		case <-ctx.Done():
			return
		}
	}
}

// writePump is the only writer of the connection
func (h *Hub) writePump(ctx context.Context, cancel context.CancelFunc, c *client, messages <-chan *entities.ChatMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = c.conn.Close()
	}()

	write := func(ev Event) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			h.logger.Debug("chat write failed", "username", c.username, "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case ev := <-c.send:
			if !write(ev) {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !write(Event{Type: EventMessage, Message: msg}) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
