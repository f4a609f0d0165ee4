package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carslink-backend/internal/model"
	"carslink-backend/internal/progress"
)

// statusTitles are the notification titles per appointment status.
var statusTitles = map[model.AppointmentStatus]string{
	model.AppointmentConfirmed:  "Rendez-vous confirmé",
	model.AppointmentInProgress: "Intervention en cours",
	model.AppointmentCompleted:  "Intervention terminée",
	model.AppointmentCancelled:  "Rendez-vous annulé",
}

// repairTitles are the notification titles per repair tracking status.
var repairTitles = map[model.RepairStatus]string{
	model.RepairReceived:   "Véhicule réceptionné",
	model.RepairDiagnosing: "Diagnostic en cours",
	model.RepairInProgress: "Réparation en cours",
	model.RepairCompleted:  "Réparation terminée",
}

func (s *gormStore) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Status = model.AppointmentPending

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The vehicle must belong to the booking account.
		var count int64
		if err := tx.Model(&model.Vehicle{}).
			Where("id = ? AND account_id = ?", a.VehicleID, a.AccountID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check vehicle: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&model.Garage{}).Where("id = ?", a.GarageID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check garage: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (s *gormStore) ListAppointments(ctx context.Context, accountID string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Garage").
		Where("account_id = ?", accountID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *gormStore) GetAppointment(ctx context.Context, id, accountID string) (*model.Appointment, error) {
	var a model.Appointment
	q := s.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Garage").
		Preload("Garage.Services").
		Where("id = ?", id)
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	if err := q.First(&a).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &a, nil
}

// CancelAppointment is the only status change the client side may perform.
func (s *gormStore) CancelAppointment(ctx context.Context, id, accountID string, now time.Time) (*model.Notification, error) {
	var notification *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Appointment
		if err := tx.Where("id = ? AND account_id = ?", id, accountID).First(&a).Error; err != nil {
			return translateNotFound(err)
		}

		n, err := transitionAppointment(tx, &a, model.AppointmentCancelled, now)
		if err != nil {
			return err
		}
		notification = n
		return nil
	})
	return notification, err
}

// UpdateAppointmentStatus applies a garage-side status change guarded by the
// transition table, and records the matching client notification in the same
// transaction.
func (s *gormStore) UpdateAppointmentStatus(ctx context.Context, id string, to model.AppointmentStatus, now time.Time) (*model.Notification, error) {
	var notification *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Appointment
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			return translateNotFound(err)
		}

		n, err := transitionAppointment(tx, &a, to, now)
		if err != nil {
			return err
		}
		notification = n
		return nil
	})
	return notification, err
}

// transitionAppointment applies the status change and writes the
// notification row. A no-op transition (same status) creates no notification.
func transitionAppointment(tx *gorm.DB, a *model.Appointment, to model.AppointmentStatus, now time.Time) (*model.Notification, error) {
	if a.Status == to {
		return nil, nil
	}
	if !progress.CanTransition(a.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	if err := progress.ApplyTransition(a, to, now); err != nil {
		return nil, err
	}
	if err := tx.Save(a).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment %s: %w", a.ID, err)
	}

	n := &model.Notification{
		ID:        uuid.NewString(),
		AccountID: a.AccountID,
		Kind:      "appointment_status",
		Title:     statusTitles[to],
		Body:      fmt.Sprintf("Votre rendez-vous %s est maintenant: %s", a.ServiceType, to),
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (s *gormStore) GetRepairTracking(ctx context.Context, appointmentID string) (*model.RepairTracking, error) {
	var tracking model.RepairTracking
	err := s.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&tracking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Zero-or-one per appointment; absence is not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repair tracking: %w", err)
	}
	return &tracking, nil
}

// UpsertRepairTracking writes the zero-or-one tracking record and, when the
// status actually changed, records a client notification.
func (s *gormStore) UpsertRepairTracking(ctx context.Context, appointmentID string, status model.RepairStatus, description string, now time.Time) (*model.Notification, error) {
	var notification *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Appointment
		if err := tx.Where("id = ?", appointmentID).First(&a).Error; err != nil {
			return translateNotFound(err)
		}

		changed := true
		var existing model.RepairTracking
		err := tx.Where("appointment_id = ?", appointmentID).First(&existing).Error
		switch {
		case err == nil:
			changed = existing.Status != status
			existing.Status = status
			existing.Description = description
			existing.UpdatedAt = now
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update repair tracking: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := model.RepairTracking{
				AppointmentID: appointmentID,
				Status:        status,
				Description:   description,
				UpdatedAt:     now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create repair tracking: %w", err)
			}
		default:
			return fmt.Errorf("failed to fetch repair tracking: %w", err)
		}

		if !changed {
			return nil
		}

		n := &model.Notification{
			ID:        uuid.NewString(),
			AccountID: a.AccountID,
			Kind:      "repair_update",
			Title:     repairTitles[status],
			Body:      description,
		}
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		notification = n
		return nil
	})
	return notification, err
}

func (s *gormStore) ListInvoices(ctx context.Context, accountID string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := s.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = invoices.appointment_id").
		Where("appointments.account_id = ?", accountID).
		Order("invoices.issued_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *gormStore) CreateSupportTicket(ctx context.Context, ticket *model.SupportTicket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.Status == "" {
		ticket.Status = "open"
	}
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to create support ticket: %w", err)
	}
	return nil
}
