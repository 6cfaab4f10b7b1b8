// Package services
// File: services/registration_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go-drop-registry/logger"
	"go-drop-registry/models"
	"go-drop-registry/store"
)

// RegistrationServiceInterface is what the HTTP and live feed layers use.
type RegistrationServiceInterface interface {
	Submit(ctx context.Context, p models.Principal, req SubmitRequest) (models.Registration, error)

	Status(ctx context.Context) (models.AdminStatus, error)
	Overview(ctx context.Context) (Overview, error)
	TakenSelections(ctx context.Context, slot string) (models.TakenSelections, error)
	TeamRegistry(ctx context.Context, slot string) ([]models.TeamEntry, error)
	DayRegistrants(ctx context.Context) (DayRegistrants, error)
	SlotRegistrants(ctx context.Context, slot string) ([]models.Registration, error)
	Contacts(ctx context.Context, slot string) (Contacts, error)

	OpenRegistration(ctx context.Context) error
	CloseRegistration(ctx context.Context) error
	ResetDay(ctx context.Context) (int64, error)
	SetSlotLimit(ctx context.Context, slot string, n int) error
	SetSlotActive(ctx context.Context, slot string, active bool) error
	ScheduleNextStart(ctx context.Context, at time.Time) error
}

// RegistrationService is the admission controller plus the admin operations
// on the status record. It holds no locks: concurrent submitters coordinate
// only through store reads and writes, so a slot can briefly over-commit.
type RegistrationService struct {
	store    store.Interface
	clock    Clock
	recorder Recorder
	notifier Notifier
	validate *validator.Validate
}

var _ RegistrationServiceInterface = (*RegistrationService)(nil)

// NewRegistrationService wires the service. recorder and notifier may be nil.
func NewRegistrationService(st store.Interface, clock Clock, recorder Recorder, notifier Notifier) *RegistrationService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &RegistrationService{
		store:    st,
		clock:    clock,
		recorder: recorder,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ---------------- submission ----------------

// SubmitRequest is the form a team fills in.
type SubmitRequest struct {
	TeamName           string `json:"teamName" validate:"max=64"`
	ManagerEmail       string `json:"managerEmail" validate:"email"`
	Whatsapp           string `json:"whatsapp" validate:"number,max=15"`
	TimeSlot           string `json:"timeSlot"`
	Dropdown1Selection string `json:"dropdown1Selection"`
	Dropdown2Selection string `json:"dropdown2Selection"`
	Dropdown3Selection string `json:"dropdown3Selection"`
}

// normalized trims every field and strips phone separators.
func (r SubmitRequest) normalized() SubmitRequest {
	r.TeamName = strings.TrimSpace(r.TeamName)
	r.ManagerEmail = strings.TrimSpace(r.ManagerEmail)
	r.Whatsapp = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(r.Whatsapp))
	r.Whatsapp = strings.TrimPrefix(r.Whatsapp, "+")
	r.TimeSlot = strings.TrimSpace(r.TimeSlot)
	r.Dropdown1Selection = strings.TrimSpace(r.Dropdown1Selection)
	r.Dropdown2Selection = strings.TrimSpace(r.Dropdown2Selection)
	r.Dropdown3Selection = strings.TrimSpace(r.Dropdown3Selection)
	return r
}

func (r SubmitRequest) hasEmptyField() bool {
	for _, v := range []string{r.TeamName, r.ManagerEmail, r.Whatsapp, r.TimeSlot,
		r.Dropdown1Selection, r.Dropdown2Selection, r.Dropdown3Selection} {
		if v == "" {
			return true
		}
	}
	return false
}

// Submit runs the admission checks in order and writes the registration.
// Each refusal is a *Rejection; store failures are not retried.
func (s *RegistrationService) Submit(ctx context.Context, p models.Principal, req SubmitRequest) (models.Registration, error) {
	reg, err := s.submit(ctx, p, req)
	if err != nil {
		if rej, ok := AsRejection(err); ok {
			s.recorder.SubmissionRejected(rej.Kind)
			logger.Info.Printf("Submit: rejected uid=%s slot=%q kind=%s", p.UID, req.TimeSlot, rej.Kind)
		}
		return models.Registration{}, err
	}
	return reg, nil
}

func (s *RegistrationService) submit(ctx context.Context, p models.Principal, req SubmitRequest) (models.Registration, error) {
	req = req.normalized()

	// 1. every field present and well formed
	if req.hasEmptyField() {
		return models.Registration{}, validationError("Please fill in all fields.")
	}
	if p.UID == "" {
		return models.Registration{}, validationError("You must be signed in to register.")
	}
	if err := s.checkFormat(req); err != nil {
		return models.Registration{}, err
	}
	if !models.IsValidSlot(req.TimeSlot) {
		return models.Registration{}, validationError("Please select a valid time slot.")
	}
	catalogs := models.Catalogs()
	picks := [3]*string{&req.Dropdown1Selection, &req.Dropdown2Selection, &req.Dropdown3Selection}
	for i, pick := range picks {
		canonical, err := ResolveOption(catalogs[i], *pick)
		if err != nil {
			return models.Registration{}, validationError(fmt.Sprintf("Please pick a valid %s drop.", catalogs[i].Name))
		}
		*pick = canonical
	}

	// 2. three different drops
	d1, d2, d3 := req.Dropdown1Selection, req.Dropdown2Selection, req.Dropdown3Selection
	if d1 == d2 || d2 == d3 || d1 == d3 {
		return models.Registration{}, validationError("All three dropdowns must be different.")
	}

	status, err := s.snapshot(ctx)
	if err != nil {
		return models.Registration{}, storeUnavailableError(submitFailedMessage, err)
	}

	// 3. window open
	if !status.IsRegistrationOpen {
		return models.Registration{}, windowClosedError()
	}
	// 4. slot active
	if !status.IsSlotActive(req.TimeSlot) {
		return models.Registration{}, slotInactiveError(req.TimeSlot)
	}

	// 5. capacity, from a snapshot that may already be stale
	partition := store.RegistrationFilter{TimeSlot: req.TimeSlot, Date: status.Day}
	existing, err := s.store.ListRegistrations(ctx, partition)
	if err != nil {
		return models.Registration{}, storeUnavailableError(submitFailedMessage, err)
	}
	limit := status.LimitFor(req.TimeSlot)
	if len(existing) >= limit {
		return models.Registration{}, slotFullError(req.TimeSlot)
	}

	// 6. re-read the claimed drops right before writing
	fresh, err := s.store.ListRegistrations(ctx, partition)
	if err != nil {
		return models.Registration{}, storeUnavailableError(submitFailedMessage, err)
	}
	if models.CollectTaken(fresh).Collides(d1, d2, d3) {
		return models.Registration{}, selectionConflictError()
	}

	reg := models.Registration{
		ID:                 uuid.NewString(),
		TeamName:           req.TeamName,
		ManagerEmail:       req.ManagerEmail,
		Whatsapp:           req.Whatsapp,
		TimeSlot:           req.TimeSlot,
		Dropdown1Selection: d1,
		Dropdown2Selection: d2,
		Dropdown3Selection: d3,
		Date:               status.Day,
		CreatedAt:          s.clock.now().UTC(),
		UserID:             p.UID,
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return models.Registration{}, storeUnavailableError(submitFailedMessage, err)
	}

	count := len(fresh) + 1
	logger.Info.Printf("Submit: team=%q slot=%q day=%s registered (%d/%d)", reg.TeamName, reg.TimeSlot, reg.Date, count, limit)
	s.recorder.SubmissionAccepted(reg.TimeSlot)
	s.recorder.SlotOccupancy(reg.TimeSlot, count, limit)
	s.notifyAsync(fmt.Sprintf("New registration: %s in %s (%d/%d)", reg.TeamName, reg.TimeSlot, count, limit))
	if count >= limit {
		s.notifyAsync(fmt.Sprintf("Slot %s is now full (%d teams).", reg.TimeSlot, limit))
	}
	return reg, nil
}

// checkFormat runs the struct tags and turns the first failure into a message.
func (s *RegistrationService) checkFormat(req SubmitRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError("Please check the form and try again.")
	}
	switch verrs[0].Field() {
	case "ManagerEmail":
		return validationError("Please enter a valid email address.")
	case "Whatsapp":
		return validationError("WhatsApp number must be at most 15 digits.")
	case "TeamName":
		return validationError("Team name must be at most 64 characters.")
	default:
		return validationError("Please check the form and try again.")
	}
}

// snapshot reads the status without creating it. A missing record reads as
// the defaults, which are closed.
func (s *RegistrationService) snapshot(ctx context.Context) (models.AdminStatus, error) {
	st, exists, err := s.store.GetStatus(ctx)
	if err != nil {
		return models.AdminStatus{}, err
	}
	if !exists {
		return models.DefaultAdminStatus(s.clock.Today()), nil
	}
	return st, nil
}

func (s *RegistrationService) notifyAsync(text string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, text); err != nil {
			logger.Warn.Printf("notifyAsync: %v", err)
		}
	}()
}

// ---------------- read models ----------------

// Overview is the public picture of the window and every slot for the day.
type Overview struct {
	Day                   string               `json:"day"`
	Window                models.WindowState   `json:"window"`
	IsRegistrationOpen    bool                 `json:"isRegistrationOpen"`
	NextRegistrationStart *time.Time           `json:"nextRegistrationStart"`
	Countdown             string               `json:"countdown"`
	Slots                 []models.SlotSummary `json:"slots"`
}

// BuildOverview summarises status and the day's registrations.
func BuildOverview(status models.AdminStatus, dayRegs []models.Registration, now time.Time) Overview {
	counts := make(map[string]int, len(models.SlotNames))
	for _, r := range dayRegs {
		if r.Date == status.Day {
			counts[r.TimeSlot]++
		}
	}
	ov := Overview{
		Day:                   status.Day,
		Window:                status.Window(),
		IsRegistrationOpen:    status.IsRegistrationOpen,
		NextRegistrationStart: status.NextRegistrationStart,
		Slots:                 make([]models.SlotSummary, 0, len(models.SlotNames)),
	}
	if ov.Window == models.WindowClosedScheduled {
		ov.Countdown = CountdownText(status.NextRegistrationStart, now)
	}
	for _, slot := range models.SlotNames {
		limit := status.LimitFor(slot)
		count := counts[slot]
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		ov.Slots = append(ov.Slots, models.SlotSummary{
			Slot:      slot,
			Active:    status.IsSlotActive(slot),
			Limit:     limit,
			Count:     count,
			Remaining: remaining,
			Full:      count >= limit,
		})
	}
	return ov
}

// DayRegistrants groups the current day's registrations by slot.
type DayRegistrants struct {
	Day    string                           `json:"day"`
	BySlot map[string][]models.Registration `json:"bySlot"`
}

// GroupBySlot buckets regs under every slot name, empty slots included.
func GroupBySlot(regs []models.Registration) map[string][]models.Registration {
	out := make(map[string][]models.Registration, len(models.SlotNames))
	for _, slot := range models.SlotNames {
		out[slot] = []models.Registration{}
	}
	for _, r := range regs {
		out[r.TimeSlot] = append(out[r.TimeSlot], r)
	}
	return out
}

// Contacts are the comma joined manager e-mails and phone numbers of a slot.
type Contacts struct {
	Slot   string `json:"slot"`
	Emails string `json:"emails"`
	Phones string `json:"phones"`
}

// Status returns the status record, creating it with defaults if absent.
func (s *RegistrationService) Status(ctx context.Context) (models.AdminStatus, error) {
	return s.ensure(ctx)
}

func (s *RegistrationService) Overview(ctx context.Context) (Overview, error) {
	status, err := s.snapshot(ctx)
	if err != nil {
		return Overview{}, storeUnavailableError(storeFailedMessage, err)
	}
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{Date: status.Day})
	if err != nil {
		return Overview{}, storeUnavailableError(storeFailedMessage, err)
	}
	return BuildOverview(status, regs, s.clock.now()), nil
}

func (s *RegistrationService) TakenSelections(ctx context.Context, slot string) (models.TakenSelections, error) {
	if !models.IsValidSlot(slot) {
		return models.TakenSelections{}, validationError("Please select a valid time slot.")
	}
	status, err := s.snapshot(ctx)
	if err != nil {
		return models.TakenSelections{}, storeUnavailableError(storeFailedMessage, err)
	}
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{TimeSlot: slot, Date: status.Day})
	if err != nil {
		return models.TakenSelections{}, storeUnavailableError(storeFailedMessage, err)
	}
	return models.CollectTaken(regs), nil
}

// TeamRegistry lists every team ever registered in slot, across days, without
// contact details.
func (s *RegistrationService) TeamRegistry(ctx context.Context, slot string) ([]models.TeamEntry, error) {
	if !models.IsValidSlot(slot) {
		return nil, validationError("Please select a valid time slot.")
	}
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{TimeSlot: slot})
	if err != nil {
		return nil, storeUnavailableError(storeFailedMessage, err)
	}
	out := make([]models.TeamEntry, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.Public())
	}
	return out, nil
}

func (s *RegistrationService) DayRegistrants(ctx context.Context) (DayRegistrants, error) {
	status, err := s.snapshot(ctx)
	if err != nil {
		return DayRegistrants{}, storeUnavailableError(storeFailedMessage, err)
	}
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{Date: status.Day})
	if err != nil {
		return DayRegistrants{}, storeUnavailableError(storeFailedMessage, err)
	}
	return DayRegistrants{Day: status.Day, BySlot: GroupBySlot(regs)}, nil
}

func (s *RegistrationService) SlotRegistrants(ctx context.Context, slot string) ([]models.Registration, error) {
	if !models.IsValidSlot(slot) {
		return nil, validationError("Please select a valid time slot.")
	}
	status, err := s.snapshot(ctx)
	if err != nil {
		return nil, storeUnavailableError(storeFailedMessage, err)
	}
	regs, err := s.store.ListRegistrations(ctx, store.RegistrationFilter{TimeSlot: slot, Date: status.Day})
	if err != nil {
		return nil, storeUnavailableError(storeFailedMessage, err)
	}
	return regs, nil
}

func (s *RegistrationService) Contacts(ctx context.Context, slot string) (Contacts, error) {
	regs, err := s.SlotRegistrants(ctx, slot)
	if err != nil {
		return Contacts{}, err
	}
	emails := make([]string, 0, len(regs))
	phones := make([]string, 0, len(regs))
	for _, r := range regs {
		emails = append(emails, r.ManagerEmail)
		phones = append(phones, r.Whatsapp)
	}
	return Contacts{Slot: slot, Emails: strings.Join(emails, ", "), Phones: strings.Join(phones, ", ")}, nil
}
