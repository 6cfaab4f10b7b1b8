// Package websocket - websocket/hub.go
package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go-drop-registry/logger"
	"go-drop-registry/services"
)

// Topic separates the public feed from the admin feed.
type Topic string

const (
	TopicPublic Topic = "public"
	TopicAdmin  Topic = "admin"
)

// Hub tracks connections per topic and remembers the last message of each
// action so late joiners start from the current picture.
type Hub struct {
	mu          sync.Mutex
	connections map[*Connection]bool
	latest      map[Topic]map[string][]byte
	order       []string
	upgrader    websocket.Upgrader
	recorder    services.Recorder
}

// NewHub accepts upgrades from allowedOrigins; an empty list allows any
// origin. recorder may be nil.
func NewHub(allowedOrigins []string, recorder services.Recorder) *Hub {
	if recorder == nil {
		recorder = services.NopRecorder{}
	}
	h := &Hub{
		connections: make(map[*Connection]bool),
		latest:      map[Topic]map[string][]byte{TopicPublic: {}, TopicAdmin: {}},
		recorder:    recorder,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(allowedOrigins) == 0 || origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == origin || o == "*" {
					return true
				}
			}
			logger.Warn.Printf("[Hub] rejected origin %q", origin)
			return false
		},
	}
	return h
}

// Serve upgrades the request and attaches the client to topic.
func (h *Hub) Serve(topic Topic) gin.HandlerFunc {
	return func(c *gin.Context) {
		wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error.Printf("[Serve] WebSocket upgrade error: %v", err)
			return
		}
		logger.Info.Printf("[Serve] %s client connected from %v", topic, wsConn.RemoteAddr())

		conn := newConnection(h, wsConn, topic)
		h.register(conn)
		go conn.writePump()
		go conn.readPump()
	}
}

// Publish sends message to every client of topic and remembers it under
// action. Public messages also reach admin clients.
func (h *Hub) Publish(topic Topic, action string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, seen := h.latest[TopicAdmin][action]; !seen {
		h.order = append(h.order, action)
	}
	h.latest[TopicAdmin][action] = message
	if topic == TopicPublic {
		h.latest[TopicPublic][action] = message
	}

	for c := range h.connections {
		if topic == TopicPublic || c.topic == topic {
			c.enqueue(message)
		}
	}
}

// Count returns the number of clients on topic.
func (h *Hub) Count(topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.countLocked(topic)
}

func (h *Hub) countLocked(topic Topic) int {
	n := 0
	for c := range h.connections {
		if c.topic == topic {
			n++
		}
	}
	return n
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	h.replayLocked(c)
	n := h.countLocked(c.topic)
	h.mu.Unlock()

	h.recorder.ConnectedClients(string(c.topic), n)
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if !h.connections[c] {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	close(c.send)
	n := h.countLocked(c.topic)
	h.mu.Unlock()

	logger.Info.Printf("[Hub] %s client %v left", c.topic, c.conn.RemoteAddr())
	h.recorder.ConnectedClients(string(c.topic), n)
}

func (h *Hub) replay(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c] {
		h.replayLocked(c)
	}
}

// replayLocked queues the remembered messages in first-seen order.
func (h *Hub) replayLocked(c *Connection) {
	latest := h.latest[c.topic]
	for _, action := range h.order {
		if msg, ok := latest[action]; ok {
			c.enqueue(msg)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
}
