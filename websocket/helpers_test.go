//go:build unit
// +build unit

// file: websocket/helpers_test.go
package websocket

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go-drop-registry/logger"
)

func TestMain(m *testing.M) {
	logger.UseWriter(io.Discard)
	os.Exit(m.Run())
}

// fakeConn implements WSConn without any network. Reads come from incoming;
// closing incoming makes ReadMessage fail like a dropped socket.
type fakeConn struct {
	mu       sync.Mutex
	incoming chan []byte
	written  [][]byte
	pings    int
	closes   int
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan []byte, 8)}
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	switch messageType {
	case websocket.PingMessage:
		fc.pings++
	case websocket.CloseMessage:
		fc.closes++
	default:
		fc.written = append(fc.written, data)
	}
	return nil
}

func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-fc.incoming
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return websocket.TextMessage, msg, nil
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	fc.closed = true
	fc.mu.Unlock()
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(int64) {}

func (fc *fakeConn) SetReadDeadline(time.Time) error { return nil }

func (fc *fakeConn) SetPongHandler(func(string) error) {}

func (fc *fakeConn) messages() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make([][]byte, len(fc.written))
	copy(out, fc.written)
	return out
}

// frame is one captured Broadcast call.
type frame struct {
	Topic  Topic
	Action string
	Data   interface{}
}

// captureMessenger records broadcasts instead of publishing them.
type captureMessenger struct {
	mu     sync.Mutex
	frames []frame
}

func (m *captureMessenger) Broadcast(topic Topic, action string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame{Topic: topic, Action: action, Data: data})
}

func (m *captureMessenger) all(action string) []frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []frame
	for _, f := range m.frames {
		if f.Action == action {
			out = append(out, f)
		}
	}
	return out
}

func (m *captureMessenger) last(action string) (frame, bool) {
	frames := m.all(action)
	if len(frames) == 0 {
		return frame{}, false
	}
	return frames[len(frames)-1], true
}

// drain empties c.send without blocking and decodes each envelope's action.
func drain(c *Connection) []string {
	var actions []string
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return actions
			}
			var env Envelope
			if err := json.Unmarshal(msg, &env); err == nil {
				actions = append(actions, env.Action)
			}
		default:
			return actions
		}
	}
}

func envelope(t *testing.T, action string, data interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(Envelope{Action: action, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return b
}
