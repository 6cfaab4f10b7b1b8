// Package store
// File: store/subscription.go
package store

import (
	"context"
	"sync"
)

// Subscription is a live query. Cancel stops delivery; it does not wait for an
// in-flight callback, so callers must tolerate one late delivery.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// newSubscription derives a cancellable context for the watcher goroutine.
func newSubscription(parent context.Context) (*Subscription, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{cancel: cancel, done: make(chan struct{})}, ctx
}

// Cancel stops the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.cancel()
}

// Done is closed once the watcher goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// finish marks the watcher goroutine as exited.
func (s *Subscription) finish() {
	s.once.Do(func() { close(s.done) })
}
