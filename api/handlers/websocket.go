package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsEvent is the frame pushed to connected clients
type wsEvent struct {
	Event string              `json:"event"`
	Data  models.Notification `json:"data"`
}

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan wsEvent
}

// NotificationHub pushes stored notifications to the websocket connections
// of their recipients. A user may hold several connections.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
}

// NewNotificationHub returns an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[string]map[*wsClient]struct{})}
}

// Name identifies the hub among the notifier's channels
func (h *NotificationHub) Name() string { return "websocket" }

// Deliver queues every notification for the recipient's open connections.
// A connection whose buffer is full misses the frame; the feed endpoint
// still has it.
func (h *NotificationHub) Deliver(ctx context.Context, notifications []models.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, n := range notifications {
		for c := range h.clients[n.UserID] {
			select {
			case c.send <- wsEvent{Event: "new_notification", Data: n}:
			default:
				zap.S().Warnw("websocket buffer full, dropping notification", "userId", n.UserID, "notificationId", n.ID.Hex())
			}
		}
	}
	return nil
}

// Connected returns how many connections userID holds
func (h *NotificationHub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *NotificationHub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *NotificationHub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// ServeHTTP upgrades an authenticated request and streams the caller's
// notifications until the client goes away.
func (h *NotificationHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "userId", s.UserID, "error", err)
		return
	}

	c := &wsClient{userID: s.UserID, conn: conn, send: make(chan wsEvent, wsSendBuffer)}
	h.register(c)
	zap.S().Debugw("websocket connected", "userId", s.UserID)

	done := make(chan struct{})
	go c.writeLoop(done)

	c.readLoop()
	h.unregister(c)
	close(done)
	_ = conn.Close()
	zap.S().Debugw("websocket disconnected", "userId", s.UserID)
}

// readLoop discards client frames and returns once the connection fails or
// stops answering pings.
func (c *wsClient) readLoop() {
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugw("websocket read failed", "userId", c.userID, "error", err)
			}
			return
		}
	}
}

// writeLoop is the only writer of the connection.
func (c *wsClient) writeLoop(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				zap.S().Debugw("websocket write failed", "userId", c.userID, "error", err)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
