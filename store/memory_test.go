//go:build unit
// +build unit

// file: store/memory_test.go
package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-drop-registry/models"
)

func reg(id, slot, date string, created time.Time) models.Registration {
	return models.Registration{
		ID: id, TeamName: "team-" + id, TimeSlot: slot, Date: date, CreatedAt: created,
		Dropdown1Selection: "School", Dropdown2Selection: "Pecado", Dropdown3Selection: "Cave",
	}
}

func TestMemoryStore_EnsureStatusCreatesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, exists, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	first, err := s.EnsureStatus(ctx, models.DefaultAdminStatus("2025-05-01"))
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", first.Day)

	// a second ensure must not overwrite
	open := true
	require.NoError(t, s.UpdateStatus(ctx, StatusUpdate{IsRegistrationOpen: &open}))
	second, err := s.EnsureStatus(ctx, models.DefaultAdminStatus("2030-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", second.Day)
	assert.True(t, second.IsRegistrationOpen)
}

func TestMemoryStore_UpdateStatusTouchesOneSlot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.EnsureStatus(ctx, models.DefaultAdminStatus("2025-05-01"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, StatusUpdate{SlotLimits: map[string]int{models.Slot3PM: 2}}))
	require.NoError(t, s.UpdateStatus(ctx, StatusUpdate{ActiveSlots: map[string]bool{models.Slot9PM: false}}))

	st, _, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.LimitFor(models.Slot3PM))
	assert.Equal(t, models.DefaultSlotLimit, st.LimitFor(models.Slot1PM))
	assert.False(t, st.IsSlotActive(models.Slot9PM))
	assert.True(t, st.IsSlotActive(models.Slot3PM))
}

func TestMemoryStore_ListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateRegistration(ctx, reg("b", models.Slot1PM, "2025-05-01", base.Add(time.Minute))))
	require.NoError(t, s.CreateRegistration(ctx, reg("a", models.Slot1PM, "2025-05-01", base)))
	require.NoError(t, s.CreateRegistration(ctx, reg("c", models.Slot1PM, "2025-04-30", base)))
	require.NoError(t, s.CreateRegistration(ctx, reg("d", models.Slot3PM, "2025-05-01", base)))

	regs, err := s.ListRegistrations(ctx, RegistrationFilter{TimeSlot: models.Slot1PM, Date: "2025-05-01"})
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "a", regs[0].ID)
	assert.Equal(t, "b", regs[1].ID)

	bySlot, err := s.ListRegistrations(ctx, RegistrationFilter{TimeSlot: models.Slot1PM})
	require.NoError(t, err)
	assert.Len(t, bySlot, 3)

	all, err := s.ListRegistrations(ctx, RegistrationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryStore_CreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := reg("a", models.Slot1PM, "2025-05-01", time.Now())

	require.NoError(t, s.CreateRegistration(ctx, r))
	assert.Error(t, s.CreateRegistration(ctx, r))
	assert.Error(t, s.CreateRegistration(ctx, models.Registration{}))
}

func TestMemoryStore_DeleteAllIgnoresDate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateRegistration(ctx, reg("a", models.Slot1PM, "2025-05-01", time.Now())))
	require.NoError(t, s.CreateRegistration(ctx, reg("b", models.Slot1PM, "2024-01-01", time.Now())))

	n, err := s.DeleteAllRegistrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	regs, err := s.ListRegistrations(ctx, RegistrationFilter{})
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestMemoryStore_ClosedAndCancelled(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.GetStatus(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, s.Close(context.Background()))
	_, err = s.ListRegistrations(context.Background(), RegistrationFilter{})
	assert.ErrorIs(t, err, ErrClosed)
}

// Test: a watcher sees the current value first, then each change, and nothing after cancel
func TestMemoryStore_WatchStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var mu sync.Mutex
	var seen []bool
	sub, err := s.WatchStatus(ctx, func(st models.AdminStatus, exists bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, exists && st.IsRegistrationOpen)
	})
	require.NoError(t, err)

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(seen)
	}
	require.Eventually(t, func() bool { return count() == 1 }, time.Second, 5*time.Millisecond)

	open := true
	require.NoError(t, s.UpdateStatus(ctx, StatusUpdate{IsRegistrationOpen: &open}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 2 && seen[len(seen)-1]
	}, time.Second, 5*time.Millisecond)

	sub.Cancel()
	<-sub.Done()
	before := count()
	closed := false
	require.NoError(t, s.UpdateStatus(ctx, StatusUpdate{IsRegistrationOpen: &closed}))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, count())
}

func TestMemoryStore_WatchRegistrationsFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	latest := make(chan int, 16)
	sub, err := s.WatchRegistrations(ctx, RegistrationFilter{Date: "2025-05-01"}, func(regs []models.Registration) {
		latest <- len(regs)
	})
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Equal(t, 0, <-latest)
	require.NoError(t, s.CreateRegistration(ctx, reg("a", models.Slot1PM, "2025-05-01", time.Now())))
	assert.Equal(t, 1, <-latest)
}
