//go:build unit
// +build unit

// heartbeat_test.go
package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-drop-registry/store"
)

func TestHeartbeat_CheckRecordsOutcome(t *testing.T) {
	st := store.NewMemoryStore()
	h := NewHeartbeatManager(st, time.Minute)
	checked := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return checked }

	ok, at, err := h.LastCheck()
	assert.False(t, ok)
	assert.True(t, at.IsZero())
	assert.NoError(t, err)

	require.NoError(t, h.Check(context.Background()))
	ok, at, err = h.LastCheck()
	assert.True(t, ok)
	assert.Equal(t, checked, at)
	assert.NoError(t, err)

	require.NoError(t, st.Close(context.Background()))
	assert.ErrorIs(t, h.Check(context.Background()), store.ErrClosed)
	ok, _, err = h.LastCheck()
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestHeartbeat_RunStopsWithContext(t *testing.T) {
	h := NewHeartbeatManager(store.NewMemoryStore(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		ok, _, _ := h.LastCheck()
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewHeartbeatManager_DefaultInterval(t *testing.T) {
	h := NewHeartbeatManager(store.NewMemoryStore(), 0)
	assert.Equal(t, 30*time.Second, h.interval)
	assert.Equal(t, 15*time.Second, h.timeout)
}
