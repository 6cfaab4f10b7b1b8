//go:build unit
// +build unit

// file: websocket/connection_test.go
package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadPump_RefreshReplaysAndExitUnregisters(t *testing.T) {
	h := NewHub(nil, nil)
	fc := newFakeConn()
	c := newConnection(h, fc, TopicPublic)
	h.register(c)
	h.Publish(TopicPublic, "statusUpdate", envelope(t, "statusUpdate", nil))
	drain(c)

	done := make(chan struct{})
	go func() {
		c.readPump()
		close(done)
	}()

	fc.incoming <- []byte(`not json`)
	fc.incoming <- []byte(`{"action":"ping"}`)
	fc.incoming <- []byte(`{"action":"refresh"}`)
	assert.Eventually(t, func() bool { return len(c.send) == 1 }, time.Second, 10*time.Millisecond)

	close(fc.incoming)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readPump did not return after the socket closed")
	}

	assert.Equal(t, []string{"statusUpdate"}, drain(c))
	assert.Equal(t, 0, h.Count(TopicPublic))
	fc.mu.Lock()
	assert.True(t, fc.closed)
	fc.mu.Unlock()
}

func TestWritePump_WritesQueuedMessagesThenCloses(t *testing.T) {
	h := NewHub(nil, nil)
	fc := newFakeConn()
	c := newConnection(h, fc, TopicAdmin)
	h.register(c)

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	h.Publish(TopicAdmin, "registrants", envelope(t, "registrants", nil))
	assert.Eventually(t, func() bool { return len(fc.messages()) == 1 }, time.Second, 10*time.Millisecond)

	h.unregister(c)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writePump did not return after the hub closed the channel")
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Equal(t, 1, fc.closes, "a close frame is sent when the hub lets go")
	assert.True(t, fc.closed)
}
