// Package services contains the registration business logic and its collaborators.
// File: services/errors.go
package services

import (
	"errors"
	"fmt"
)

// RejectionKind names why a submission or admin operation was refused.
type RejectionKind string

const (
	KindValidation        RejectionKind = "ValidationError"
	KindWindowClosed      RejectionKind = "WindowClosedError"
	KindSlotInactive      RejectionKind = "SlotInactiveError"
	KindSlotFull          RejectionKind = "SlotFullError"
	KindSelectionConflict RejectionKind = "SelectionConflictError"
	KindStoreUnavailable  RejectionKind = "StoreUnavailableError"
)

// sentinels matched with errors.Is
var (
	ErrValidation        = errors.New("validation failed")
	ErrWindowClosed      = errors.New("registration window closed")
	ErrSlotInactive      = errors.New("slot inactive")
	ErrSlotFull          = errors.New("slot full")
	ErrSelectionConflict = errors.New("selection already taken")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var sentinels = map[RejectionKind]error{
	KindValidation:        ErrValidation,
	KindWindowClosed:      ErrWindowClosed,
	KindSlotInactive:      ErrSlotInactive,
	KindSlotFull:          ErrSlotFull,
	KindSelectionConflict: ErrSelectionConflict,
	KindStoreUnavailable:  ErrStoreUnavailable,
}

// Rejection carries the kind, a message fit for the end user and, for store
// failures, the underlying cause.
type Rejection struct {
	Kind    RejectionKind
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Message, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// Is makes errors.Is(err, ErrSlotFull) and friends work.
func (r *Rejection) Is(target error) bool {
	return sentinels[r.Kind] == target
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// AsRejection extracts a Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// ---------------- constructors ----------------

func validationError(msg string) *Rejection {
	return &Rejection{Kind: KindValidation, Message: msg}
}

func windowClosedError() *Rejection {
	return &Rejection{Kind: KindWindowClosed, Message: "Registration is currently closed."}
}

func slotInactiveError(slot string) *Rejection {
	return &Rejection{Kind: KindSlotInactive, Message: fmt.Sprintf("Selected time slot (%s) is currently inactive.", slot)}
}

func slotFullError(slot string) *Rejection {
	return &Rejection{Kind: KindSlotFull, Message: fmt.Sprintf("Selected time slot (%s) is already full.", slot)}
}

func selectionConflictError() *Rejection {
	return &Rejection{Kind: KindSelectionConflict, Message: "One or more selected options are now taken. Please try again."}
}

// messages for store failures
const (
	submitFailedMessage = "Failed to submit registration. Please try again."
	storeFailedMessage  = "The registration store could not be reached. Please try again."
)

func storeUnavailableError(msg string, err error) *Rejection {
	return &Rejection{Kind: KindStoreUnavailable, Message: msg, Err: err}
}
