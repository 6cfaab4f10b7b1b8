// Package services
// File: services/admin_ops.go
package services

import (
	"context"
	"fmt"
	"time"

	"go-drop-registry/logger"
	"go-drop-registry/models"
	"go-drop-registry/store"
)

// Admin operations write the status singleton. Each one makes sure the record
// exists first so partial updates have something to patch.

// OpenRegistration opens the window for today.
func (s *RegistrationService) OpenRegistration(ctx context.Context) error {
	open := true
	today := s.clock.Today()
	if err := s.update(ctx, "open", store.StatusUpdate{IsRegistrationOpen: &open, Day: &today}); err != nil {
		return err
	}
	logger.Info.Printf("OpenRegistration: window open for %s", today)
	s.notifyAsync(fmt.Sprintf("Registration is now open for %s.", today))
	return nil
}

// CloseRegistration closes the window and drops any scheduled start.
func (s *RegistrationService) CloseRegistration(ctx context.Context) error {
	closed := false
	if err := s.update(ctx, "close", store.StatusUpdate{IsRegistrationOpen: &closed, ClearNextRegistrationStart: true}); err != nil {
		return err
	}
	logger.Info.Println("CloseRegistration: window closed")
	s.notifyAsync("Registration is now closed.")
	return nil
}

// ResetDay deletes every registration, then starts a closed, unscheduled day
// dated today. It returns how many registrations were removed.
func (s *RegistrationService) ResetDay(ctx context.Context) (int64, error) {
	current, err := s.ensure(ctx)
	if err != nil {
		return 0, err
	}
	deleted, err := s.store.DeleteAllRegistrations(ctx)
	if err != nil {
		return 0, storeUnavailableError(storeFailedMessage, err)
	}
	closed := false
	today := s.clock.Today()
	u := store.StatusUpdate{IsRegistrationOpen: &closed, Day: &today, ClearNextRegistrationStart: true}
	if err := s.store.UpdateStatus(ctx, u); err != nil {
		return deleted, storeUnavailableError(storeFailedMessage, err)
	}
	s.recorder.AdminAction("reset")
	for _, slot := range models.SlotNames {
		s.recorder.SlotOccupancy(slot, 0, current.LimitFor(slot))
	}
	logger.Info.Printf("ResetDay: deleted %d registrations, new day %s", deleted, today)
	return deleted, nil
}

// SetSlotLimit sets the capacity of one slot. Lowering it below the current
// count evicts nobody; further submissions are refused.
func (s *RegistrationService) SetSlotLimit(ctx context.Context, slot string, n int) error {
	if !models.IsValidSlot(slot) {
		return validationError("Please select a valid time slot.")
	}
	if n < 1 {
		return validationError("Slot limit must be at least 1.")
	}
	if err := s.update(ctx, "slot-limit", store.StatusUpdate{SlotLimits: map[string]int{slot: n}}); err != nil {
		return err
	}
	logger.Info.Printf("SetSlotLimit: %s limit %d", slot, n)
	return nil
}

// SetSlotActive enables or disables one slot.
func (s *RegistrationService) SetSlotActive(ctx context.Context, slot string, active bool) error {
	if !models.IsValidSlot(slot) {
		return validationError("Please select a valid time slot.")
	}
	if err := s.update(ctx, "slot-active", store.StatusUpdate{ActiveSlots: map[string]bool{slot: active}}); err != nil {
		return err
	}
	logger.Info.Printf("SetSlotActive: %s active=%t", slot, active)
	return nil
}

// ScheduleNextStart records when the window is expected to open. It is shown
// as a countdown only; nothing opens the window automatically.
func (s *RegistrationService) ScheduleNextStart(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		return validationError("Please pick a start time.")
	}
	if !at.After(s.clock.now()) {
		return validationError("Next registration start must be in the future.")
	}
	at = at.UTC()
	if err := s.update(ctx, "schedule", store.StatusUpdate{NextRegistrationStart: &at}); err != nil {
		return err
	}
	logger.Info.Printf("ScheduleNextStart: next start %s", at.Format(time.RFC3339))
	return nil
}

func (s *RegistrationService) ensure(ctx context.Context) (models.AdminStatus, error) {
	st, err := s.store.EnsureStatus(ctx, models.DefaultAdminStatus(s.clock.Today()))
	if err != nil {
		return models.AdminStatus{}, storeUnavailableError(storeFailedMessage, err)
	}
	return st, nil
}

func (s *RegistrationService) update(ctx context.Context, action string, u store.StatusUpdate) error {
	if _, err := s.ensure(ctx); err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, u); err != nil {
		logger.Error.Printf("%s: status update failed: %v", action, err)
		return storeUnavailableError(storeFailedMessage, err)
	}
	s.recorder.AdminAction(action)
	return nil
}
