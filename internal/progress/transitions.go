package progress

import (
	"fmt"
	"time"

	"carslink-backend/internal/model"
)

// allowTransition is the directed graph of permitted appointment status
// changes. Terminal states have no outgoing edges.
var allowTransition = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentPending:    {model.AppointmentConfirmed, model.AppointmentCancelled},
	model.AppointmentConfirmed:  {model.AppointmentInProgress, model.AppointmentCancelled},
	model.AppointmentInProgress: {model.AppointmentCompleted, model.AppointmentCancelled},
	model.AppointmentCompleted:  {},
	model.AppointmentCancelled:  {},
}

// CanTransition reports whether from -> to is a permitted status change.
func CanTransition(from, to model.AppointmentStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition changes an appointment's status and maintains the status
// timestamps. Call only after CanTransition has been consulted; it re-checks
// and errors on an invalid change.
func ApplyTransition(a *model.Appointment, to model.AppointmentStatus, now time.Time) error {
	if a == nil {
		return fmt.Errorf("appointment is nil")
	}
	from := a.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid appointment status transition: %s -> %s", from, to)
	}

	a.Status = to

	switch to {
	case model.AppointmentConfirmed:
		if a.ConfirmedAt == nil {
			t := now
			a.ConfirmedAt = &t
		}
	case model.AppointmentInProgress:
		if a.StartedAt == nil {
			t := now
			a.StartedAt = &t
		}
	case model.AppointmentCompleted:
		if a.CompletedAt == nil {
			t := now
			a.CompletedAt = &t
		}
	case model.AppointmentCancelled:
		if a.CancelledAt == nil {
			t := now
			a.CancelledAt = &t
		}
	}
	return nil
}
