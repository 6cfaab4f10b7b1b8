// file: heartbeat.go
package main

import (
	"context"
	"sync"
	"time"

	"go-drop-registry/logger"
	"go-drop-registry/store"
)

// HeartbeatManager reads the status record on a fixed interval and keeps the
// outcome of the last read for /health.
type HeartbeatManager struct {
	store    store.Interface
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu        sync.Mutex
	ok        bool
	checkedAt time.Time
	lastErr   error
}

// NewHeartbeatManager checks st every interval; each check gets half the
// interval as its deadline.
func NewHeartbeatManager(st store.Interface, interval time.Duration) *HeartbeatManager {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HeartbeatManager{store: st, interval: interval, timeout: interval / 2, now: time.Now}
}

// Check reads the status once and records the result.
func (h *HeartbeatManager) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	_, _, err := h.store.GetStatus(ctx)

	h.mu.Lock()
	wasOK := h.ok
	h.ok = err == nil
	h.checkedAt = h.now()
	h.lastErr = err
	h.mu.Unlock()

	switch {
	case err != nil && wasOK:
		logger.Error.Printf("[HeartbeatManager.Check] store unreachable: %v", err)
	case err != nil:
		logger.Debug.Printf("[HeartbeatManager.Check] store still unreachable: %v", err)
	case !wasOK:
		logger.Info.Println("[HeartbeatManager.Check] store reachable")
	}
	return err
}

// Run checks immediately and then on every tick until ctx ends.
func (h *HeartbeatManager) Run(ctx context.Context) {
	_ = h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = h.Check(ctx)
		}
	}
}

// LastCheck reports the most recent outcome. Before the first check it
// reports not ok with a zero time.
func (h *HeartbeatManager) LastCheck() (bool, time.Time, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ok, h.checkedAt, h.lastErr
}
