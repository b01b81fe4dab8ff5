package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/messages"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBuffer = 256
)

// Connection is one participant's websocket
type Connection struct {
	ID   string
	ws   *websocket.Conn // The underlying Websocket connection
	hub  *Hub
	send chan []byte // Buffered channel of outbound messages. Closed by the hub.

	logger *zap.Logger
}

// NewConnection wraps ws with a fresh connection id
func NewConnection(ws *websocket.Conn, hub *Hub, logger *zap.Logger) *Connection {
	id := uuid.NewString()

	return &Connection{
		ID:     id,
		ws:     ws,
		hub:    hub,
		send:   make(chan []byte, sendBuffer),
		logger: logger.With(zap.String("connection_id", id)),
	}
}

// ReadPump handles inbound messages from the client
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read error", zap.Error(err))
			}
			return
		}

		// We only handle text
		if msgType != websocket.TextMessage {
			continue
		}

		var inbound messages.InboundMessage
		if err := json.Unmarshal(msg, &inbound); err != nil {
			c.logger.Debug("failed to parse inbound JSON", zap.Error(err))
			c.hub.Inbound(InboundHubMessage{Conn: c, Err: err})
			continue
		}

		c.hub.Inbound(InboundHubMessage{Conn: c, Message: inbound})
	}
}

// WritePump handles outbound messages to the client
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues data without blocking. It reports false when the buffer is full.
func (c *Connection) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
