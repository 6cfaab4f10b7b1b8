package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go-drop-registry/models"
)

// ✅ Ensure MockRegistrationService implements RegistrationServiceInterface
var _ RegistrationServiceInterface = (*MockRegistrationService)(nil)

// MockRegistrationService is a mock implementation for controller tests.
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Submit(ctx context.Context, p models.Principal, req SubmitRequest) (models.Registration, error) {
	args := m.Called(ctx, p, req)
	return args.Get(0).(models.Registration), args.Error(1)
}

func (m *MockRegistrationService) Status(ctx context.Context) (models.AdminStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AdminStatus), args.Error(1)
}

func (m *MockRegistrationService) Overview(ctx context.Context) (Overview, error) {
	args := m.Called(ctx)
	return args.Get(0).(Overview), args.Error(1)
}

func (m *MockRegistrationService) TakenSelections(ctx context.Context, slot string) (models.TakenSelections, error) {
	args := m.Called(ctx, slot)
	return args.Get(0).(models.TakenSelections), args.Error(1)
}

func (m *MockRegistrationService) TeamRegistry(ctx context.Context, slot string) ([]models.TeamEntry, error) {
	args := m.Called(ctx, slot)
	teams, _ := args.Get(0).([]models.TeamEntry)
	return teams, args.Error(1)
}

func (m *MockRegistrationService) DayRegistrants(ctx context.Context) (DayRegistrants, error) {
	args := m.Called(ctx)
	return args.Get(0).(DayRegistrants), args.Error(1)
}

func (m *MockRegistrationService) SlotRegistrants(ctx context.Context, slot string) ([]models.Registration, error) {
	args := m.Called(ctx, slot)
	regs, _ := args.Get(0).([]models.Registration)
	return regs, args.Error(1)
}

func (m *MockRegistrationService) Contacts(ctx context.Context, slot string) (Contacts, error) {
	args := m.Called(ctx, slot)
	return args.Get(0).(Contacts), args.Error(1)
}

func (m *MockRegistrationService) OpenRegistration(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRegistrationService) CloseRegistration(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRegistrationService) ResetDay(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationService) SetSlotLimit(ctx context.Context, slot string, n int) error {
	return m.Called(ctx, slot, n).Error(0)
}

func (m *MockRegistrationService) SetSlotActive(ctx context.Context, slot string, active bool) error {
	return m.Called(ctx, slot, active).Error(0)
}

func (m *MockRegistrationService) ScheduleNextStart(ctx context.Context, at time.Time) error {
	return m.Called(ctx, at).Error(0)
}
