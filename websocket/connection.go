// Package websocket pushes live registration state to browsers.
// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"go-drop-registry/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

var _ WSConn = (*websocket.Conn)(nil)

// Connection represents a single WebSocket connection for one client.
type Connection struct {
	conn  WSConn
	send  chan []byte
	topic Topic
	hub   *Hub
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

func newConnection(hub *Hub, conn WSConn, topic Topic) *Connection {
	return &Connection{conn: conn, send: make(chan []byte, sendBuffer), topic: topic, hub: hub}
}

// ClientMessage is what browsers may send. Only "refresh" is understood.
type ClientMessage struct {
	Action string `json:"action"`
}

// readPump handles inbound messages from the client and keeps the read
// deadline moving on pongs.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		switch msg.Action {
		case "refresh":
			c.hub.replay(c)
		default:
			logger.Debug.Printf("[readPump] Unhandled action: %s", msg.Action)
		}
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

// enqueue drops the message when the client is too slow to keep up.
func (c *Connection) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		logger.Warn.Printf("Dropping message for connection %v", c.conn.RemoteAddr())
		return false
	}
}
