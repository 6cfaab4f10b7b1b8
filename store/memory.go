// Package store
// File: store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go-drop-registry/logger"
	"go-drop-registry/models"
)

// MemoryStore keeps everything in process. It backs local runs and tests and
// behaves like the remote stores: no transactions, last write wins.
type MemoryStore struct {
	mu       sync.RWMutex
	status   *models.AdminStatus
	regs     map[string]models.Registration
	watchers map[int]chan struct{}
	nextID   int
	closed   bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		regs:     make(map[string]models.Registration),
		watchers: make(map[int]chan struct{}),
	}
}

var _ Interface = (*MemoryStore)(nil)

// ---------------- status ----------------

func (m *MemoryStore) GetStatus(ctx context.Context) (models.AdminStatus, bool, error) {
	if err := m.check(ctx); err != nil {
		return models.AdminStatus{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status == nil {
		return models.AdminStatus{}, false, nil
	}
	return m.status.WithDefaults(), true, nil
}

func (m *MemoryStore) EnsureStatus(ctx context.Context, defaults models.AdminStatus) (models.AdminStatus, error) {
	if err := m.check(ctx); err != nil {
		return models.AdminStatus{}, err
	}
	m.mu.Lock()
	created := false
	if m.status == nil {
		s := defaults.WithDefaults()
		m.status = &s
		created = true
	}
	out := m.status.WithDefaults()
	m.mu.Unlock()

	if created {
		logger.Info.Printf("EnsureStatus: created status for day %s", out.Day)
		m.notify()
	}
	return out, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	var current models.AdminStatus
	if m.status != nil {
		current = *m.status
	}
	next := u.Apply(current)
	m.status = &next
	m.mu.Unlock()

	m.notify()
	return nil
}

// ---------------- registrations ----------------

func (m *MemoryStore) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.list(f), nil
}

func (m *MemoryStore) list(f RegistrationFilter) []models.Registration {
	out := make([]models.Registration, 0)
	for _, r := range m.regs {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sortByCreated(out)
	return out
}

func (m *MemoryStore) CreateRegistration(ctx context.Context, r models.Registration) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	if r.ID == "" {
		return fmt.Errorf("CreateRegistration: missing id")
	}
	m.mu.Lock()
	if _, exists := m.regs[r.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("CreateRegistration: duplicate id %s", r.ID)
	}
	m.regs[r.ID] = r
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *MemoryStore) DeleteAllRegistrations(ctx context.Context) (int64, error) {
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	n := int64(len(m.regs))
	m.regs = make(map[string]models.Registration)
	m.mu.Unlock()

	m.notify()
	return n, nil
}

// ---------------- subscriptions ----------------

func (m *MemoryStore) WatchStatus(ctx context.Context, fn StatusHandler) (*Subscription, error) {
	return m.watch(ctx, func() {
		m.mu.RLock()
		var s models.AdminStatus
		exists := m.status != nil
		if exists {
			s = m.status.WithDefaults()
		}
		m.mu.RUnlock()
		fn(s, exists)
	})
}

func (m *MemoryStore) WatchRegistrations(ctx context.Context, f RegistrationFilter, fn RegistrationsHandler) (*Subscription, error) {
	return m.watch(ctx, func() {
		m.mu.RLock()
		regs := m.list(f)
		m.mu.RUnlock()
		fn(regs)
	})
}

// watch runs deliver once before returning and again after every mutation.
// Bursts of mutations coalesce into one delivery.
func (m *MemoryStore) watch(ctx context.Context, deliver func()) (*Subscription, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	sub, subCtx := newSubscription(ctx)
	signal := make(chan struct{}, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = signal
	m.mu.Unlock()

	deliver()
	go func() {
		defer sub.finish()
		defer func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		}()

		for {
			select {
			case <-subCtx.Done():
				return
			case <-signal:
				if subCtx.Err() != nil {
					return
				}
				deliver()
			}
		}
	}()
	return sub, nil
}

func (m *MemoryStore) notify() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ---------------- lifecycle ----------------

func (m *MemoryStore) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func sortByCreated(regs []models.Registration) {
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].ID < regs[j].ID
		}
		return regs[i].CreatedAt.Before(regs[j].CreatedAt)
	})
}
