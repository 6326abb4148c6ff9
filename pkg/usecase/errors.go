package usecase

import (
	"errors"
	"fmt"

	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
)

// Business rule violations raised by the domain, re-exported for callers of
// this package
var (
	ErrInvalidStatus  = model.ErrInvalidStatus
	ErrNoOpTransition = model.ErrNoOpTransition
	ErrInvalidField   = model.ErrInvalidField
	ErrMissingReason  = model.ErrMissingReason
	ErrInvalidActor   = model.ErrInvalidActor
	ErrStaleWrite     = interfaces.ErrStaleWrite
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrInterventionNotFound  = errors.New("intervention not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrEstablishmentNotFound = model.ErrEstablishmentNotFound

	// Access control errors
	ErrForbidden = errors.New("actor role is not allowed to perform this action")

	// Room errors
	ErrInvalidRoom     = errors.New("invalid room")
	ErrRoomNotInTicket = errors.New("room is not part of the intervention")
)

// Context keys for error values
const (
	InterventionIDKey  = "intervention_id"
	EstablishmentIDKey = "establishment_id"
	RoomKey            = model.RoomKey
	ActorKey           = model.ActorKey
)

// Step names a sub-operation of a compound operation
type Step string

const (
	StepRoomBlock    Step = "room_block"
	StepStatus       Step = "status_change"
	StepNotification Step = "notification"
)

// PartialApplyError is returned by a compound operation whose first write
// was committed while a later one failed. The committed step is not rolled
// back; the caller decides whether to retry only FailedStep.
type PartialApplyError struct {
	CompletedStep Step
	FailedStep    Step
	Cause         error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("%s succeeded but %s failed: %v", e.CompletedStep, e.FailedStep, e.Cause)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Cause
}
