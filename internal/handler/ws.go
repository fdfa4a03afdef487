package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"opensite/api/internal/model"
	"opensite/api/internal/service"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development, configure for production
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// WSMessage is a message from a WebSocket client.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one WebSocket connection.
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *WSHub
	UserID uint // Filter alerts by user (0 means all)
}

// WSHub fans crew positions and geofence alerts out to WebSocket clients.
type WSHub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	natsConn   *nats.Conn
	posSub     *nats.Subscription
	alertSub   *nats.Subscription
	lg         *zap.SugaredLogger
	mu         sync.RWMutex
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(nc *nats.Conn, lg *zap.SugaredLogger) *WSHub {
	return &WSHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		natsConn:   nc,
		lg:         lg,
	}
}

// Run starts the hub's event loop.
func (h *WSHub) Run() {
	posSub, err := h.natsConn.Subscribe(service.SubjectLocation, func(msg *nats.Msg) {
		var fix model.CrewPosition
		if err := json.Unmarshal(msg.Data, &fix); err != nil {
			h.lg.Warnw("ws: bad position message", "error", err)
			return
		}
		data, err := json.Marshal(map[string]interface{}{
			"type": "position",
			"data": fix,
		})
		if err != nil {
			return
		}
		h.broadcast <- data
	})
	if err != nil {
		h.lg.Errorw("ws: failed to subscribe to positions", "error", err)
		return
	}
	h.posSub = posSub

	alertSub, err := h.natsConn.Subscribe(service.SubjectGeofenceAlert, func(msg *nats.Msg) {
		var alert model.SiteAlert
		if err := json.Unmarshal(msg.Data, &alert); err != nil {
			h.lg.Warnw("ws: bad alert message", "error", err)
			return
		}
		data, err := json.Marshal(map[string]interface{}{
			"type": "site_alert",
			"data": alert,
		})
		if err != nil {
			return
		}
		h.broadcast <- data
	})
	if err != nil {
		h.lg.Errorw("ws: failed to subscribe to alerts", "error", err)
		return
	}
	h.alertSub = alertSub

	h.lg.Infow("ws: hub started")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.lg.Infow("ws: client connected", "client", client.ID, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.lg.Infow("ws: client disconnected", "client", client.ID, "total", total)

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.Send <- message:
				default:
					// Send buffer is full, drop the client
					h.unregister <- client
				}
			}
		}
	}
}

// Stop unsubscribes and closes all client connections.
func (h *WSHub) Stop() {
	if h.posSub != nil {
		h.posSub.Unsubscribe()
	}
	if h.alertSub != nil {
		h.alertSub.Unsubscribe()
	}
	h.mu.Lock()
	for client := range h.clients {
		close(client.Send)
		client.Conn.Close()
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// GetClientCount returns the number of connected clients.
func (h *WSHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadPump handles incoming messages from the client.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.lg.Warnw("ws: read error", "client", c.ID, "error", err)
			}
			break
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err == nil {
			switch wsMsg.Type {
			case "subscribe":
				var data struct {
					UserID uint `json:"user_id"`
				}
				if err := json.Unmarshal(wsMsg.Data, &data); err == nil && data.UserID != 0 {
					c.UserID = data.UserID
				}
			case "ping":
				select {
				case c.Send <- []byte(`{"type":"pong"}`):
				default:
				}
			}
		}
	}
}

// WritePump handles outgoing messages to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain any queued messages into the same frame
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WSHandler upgrades HTTP connections into hub clients.
type WSHandler struct {
	hub *WSHub
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(hub *WSHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleLive serves the live position and alert stream.
func (h *WSHandler) HandleLive(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.lg.Warnw("ws: upgrade failed", "error", err)
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  h.hub,
	}
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetStats returns hub statistics.
func (h *WSHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"clients": h.hub.GetClientCount(),
	})
}
