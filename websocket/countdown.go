// Package websocket drives the scheduled-start countdown.
// File: websocket/countdown.go
package websocket

import (
	"context"
	"sync"
	"time"

	"go-drop-registry/logger"
	"go-drop-registry/services"
)

// CountdownTick is the payload of a "countdown" frame. An empty Text means
// nothing is scheduled.
type CountdownTick struct {
	Text        string `json:"text"`
	SecondsLeft int    `json:"secondsLeft"`
}

// CountdownManager broadcasts the time left until the scheduled start once
// per tick. It is display only; reaching zero does not open registration.
type CountdownManager struct {
	Messenger      Messenger
	TickerInterval time.Duration
	Now            func() time.Time

	mu      sync.Mutex
	target  time.Time
	cancel  context.CancelFunc
	timerID int
}

// NewCountdownManager ticks every second.
func NewCountdownManager(m Messenger) *CountdownManager {
	return &CountdownManager{Messenger: m, TickerInterval: time.Second, Now: time.Now}
}

// Start counts down to target, replacing any countdown already running.
// Starting again with the same target is a no-op.
func (cm *CountdownManager) Start(target time.Time) {
	cm.mu.Lock()
	if cm.cancel != nil && cm.target.Equal(target) {
		cm.mu.Unlock()
		return
	}
	if cm.cancel != nil {
		cm.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cm.cancel = cancel
	cm.target = target
	cm.timerID++
	timerID := cm.timerID
	cm.mu.Unlock()

	logger.Info.Printf("[CountdownManager.Start] counting down to %s", target.Format(time.RFC3339))
	if done := cm.tick(timerID); done {
		return
	}

	ticker := time.NewTicker(cm.interval())
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if cm.tick(timerID) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the countdown and clears the text on clients.
func (cm *CountdownManager) Stop() {
	cm.mu.Lock()
	running := cm.cancel != nil
	if running {
		cm.cancel()
		cm.cancel = nil
		cm.target = time.Time{}
		cm.timerID++
	}
	cm.mu.Unlock()

	if running {
		cm.Messenger.Broadcast(TopicPublic, "countdown", CountdownTick{})
	}
}

// Running reports whether a countdown is active.
func (cm *CountdownManager) Running() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cancel != nil
}

// tick broadcasts one frame and reports whether the countdown has finished.
func (cm *CountdownManager) tick(timerID int) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// a newer Start or a Stop superseded this timer
	if cm.timerID != timerID {
		return true
	}

	now := cm.now()
	target := cm.target
	left := int(target.Sub(now) / time.Second)
	if left < 0 {
		left = 0
	}
	cm.Messenger.Broadcast(TopicPublic, "countdown", CountdownTick{
		Text:        services.CountdownText(&target, now),
		SecondsLeft: left,
	})

	if !target.After(now) {
		logger.Info.Println("[CountdownManager.tick] scheduled start reached")
		cm.cancel()
		cm.cancel = nil
		return true
	}
	return false
}

func (cm *CountdownManager) now() time.Time {
	if cm.Now == nil {
		return time.Now()
	}
	return cm.Now()
}

// interval returns the ticker interval (defaults to 1 second if unset).
func (cm *CountdownManager) interval() time.Duration {
	if cm.TickerInterval > 0 {
		return cm.TickerInterval
	}
	return time.Second
}
