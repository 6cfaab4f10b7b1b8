// Package store
// File: store/mock_store.go
package store

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go-drop-registry/models"
)

// ensure MockStore implements Interface
var _ Interface = (*MockStore)(nil)

// MockStore is a testify mock of Interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetStatus(ctx context.Context) (models.AdminStatus, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AdminStatus), args.Bool(1), args.Error(2)
}

func (m *MockStore) EnsureStatus(ctx context.Context, defaults models.AdminStatus) (models.AdminStatus, error) {
	args := m.Called(ctx, defaults)
	return args.Get(0).(models.AdminStatus), args.Error(1)
}

func (m *MockStore) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockStore) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	args := m.Called(ctx, f)
	regs, _ := args.Get(0).([]models.Registration)
	return regs, args.Error(1)
}

func (m *MockStore) CreateRegistration(ctx context.Context, r models.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStore) DeleteAllRegistrations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) WatchStatus(ctx context.Context, fn StatusHandler) (*Subscription, error) {
	args := m.Called(ctx, fn)
	sub, _ := args.Get(0).(*Subscription)
	return sub, args.Error(1)
}

func (m *MockStore) WatchRegistrations(ctx context.Context, f RegistrationFilter, fn RegistrationsHandler) (*Subscription, error) {
	args := m.Called(ctx, f, fn)
	sub, _ := args.Get(0).(*Subscription)
	return sub, args.Error(1)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
