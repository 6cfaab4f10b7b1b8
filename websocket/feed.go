// Package websocket - websocket/feed.go
package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-drop-registry/logger"
	"go-drop-registry/models"
	"go-drop-registry/services"
	"go-drop-registry/store"
)

// StatusPayload is the "statusUpdate" frame.
type StatusPayload struct {
	Day                   string             `json:"day"`
	Window                models.WindowState `json:"window"`
	IsRegistrationOpen    bool               `json:"isRegistrationOpen"`
	NextRegistrationStart *time.Time         `json:"nextRegistrationStart"`
	Countdown             string             `json:"countdown"`
}

// SlotCountsPayload is the "slotCounts" frame.
type SlotCountsPayload struct {
	Day   string               `json:"day"`
	Slots []models.SlotSummary `json:"slots"`
}

// Feed mirrors the store onto the hub. It follows the status record and keeps
// one registrations subscription open for the status day, replacing it when
// the day changes.
type Feed struct {
	Store     store.Interface
	Messenger Messenger
	Countdown *CountdownManager
	Clock     services.Clock

	mu        sync.Mutex
	status    models.AdminStatus
	regs      []models.Registration
	day       string
	statusSub *store.Subscription
	regsSub   *store.Subscription
	ctx       context.Context
	stopped   bool
}

// NewFeed wires a feed; call Start to begin.
func NewFeed(st store.Interface, m Messenger, countdown *CountdownManager, clock services.Clock) *Feed {
	return &Feed{Store: st, Messenger: m, Countdown: countdown, Clock: clock}
}

// Start subscribes to the status record. Subscriptions end with ctx or Stop.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	f.ctx = ctx
	f.stopped = false
	f.mu.Unlock()

	sub, err := f.Store.WatchStatus(ctx, f.onStatus)
	if err != nil {
		return fmt.Errorf("watch status: %w", err)
	}
	f.mu.Lock()
	f.statusSub = sub
	f.mu.Unlock()
	logger.Info.Println("[Feed.Start] live feed started")
	return nil
}

// Stop cancels both subscriptions and the countdown.
func (f *Feed) Stop() {
	f.mu.Lock()
	statusSub, regsSub := f.statusSub, f.regsSub
	f.statusSub, f.regsSub = nil, nil
	f.stopped = true
	f.mu.Unlock()

	statusSub.Cancel()
	regsSub.Cancel()
	if f.Countdown != nil {
		f.Countdown.Stop()
	}
}

func (f *Feed) now() time.Time {
	if f.Clock.Now == nil {
		return time.Now()
	}
	return f.Clock.Now()
}

func (f *Feed) onStatus(status models.AdminStatus, exists bool) {
	if !exists {
		status = models.DefaultAdminStatus(f.Clock.Today())
	}

	f.mu.Lock()
	f.status = status
	dayChanged := status.Day != f.day
	if dayChanged {
		f.day = status.Day
		f.regs = nil
	}
	regs := f.regs
	f.mu.Unlock()

	f.publishStatus(status)
	if dayChanged {
		f.resubscribe(status.Day)
		return
	}
	f.publishSlots(status, regs)
}

// resubscribe swaps the registrations query over to day.
func (f *Feed) resubscribe(day string) {
	f.mu.Lock()
	old := f.regsSub
	f.regsSub = nil
	ctx, stopped := f.ctx, f.stopped
	f.mu.Unlock()

	old.Cancel()
	if stopped || ctx == nil || ctx.Err() != nil {
		return
	}

	sub, err := f.Store.WatchRegistrations(ctx, store.RegistrationFilter{Date: day}, func(regs []models.Registration) {
		f.onRegistrations(day, regs)
	})
	if err != nil {
		logger.Error.Printf("[Feed.resubscribe] watch registrations for %s: %v", day, err)
		return
	}

	f.mu.Lock()
	if f.stopped || f.day != day {
		// stopped, or the day moved on while we subscribed
		f.mu.Unlock()
		sub.Cancel()
		return
	}
	f.regsSub = sub
	f.mu.Unlock()
	logger.Info.Printf("[Feed.resubscribe] following registrations for %s", day)
}

func (f *Feed) onRegistrations(day string, regs []models.Registration) {
	f.mu.Lock()
	if day != f.day {
		// late delivery from a cancelled subscription
		f.mu.Unlock()
		return
	}
	f.regs = regs
	status := f.status
	f.mu.Unlock()

	f.publishSlots(status, regs)
}

func (f *Feed) publishStatus(status models.AdminStatus) {
	ov := services.BuildOverview(status, nil, f.now())
	payload := StatusPayload{
		Day:                   ov.Day,
		Window:                ov.Window,
		IsRegistrationOpen:    ov.IsRegistrationOpen,
		NextRegistrationStart: ov.NextRegistrationStart,
		Countdown:             ov.Countdown,
	}
	f.Messenger.Broadcast(TopicPublic, "statusUpdate", payload)

	if f.Countdown == nil {
		return
	}
	if ov.Window == models.WindowClosedScheduled {
		f.Countdown.Start(*status.NextRegistrationStart)
	} else {
		f.Countdown.Stop()
	}
}

func (f *Feed) publishSlots(status models.AdminStatus, regs []models.Registration) {
	ov := services.BuildOverview(status, regs, f.now())
	f.Messenger.Broadcast(TopicPublic, "slotCounts", SlotCountsPayload{Day: ov.Day, Slots: ov.Slots})
	f.Messenger.Broadcast(TopicAdmin, "registrants", services.DayRegistrants{Day: status.Day, BySlot: services.GroupBySlot(regs)})
}
