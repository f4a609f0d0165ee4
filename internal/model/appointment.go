package model

import "time"

// AppointmentStatus is persisted as a string.
type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// Appointment links an account, a vehicle and a garage for one service slot.
type Appointment struct {
	ID          string            `gorm:"primaryKey;size:36"`
	AccountID   string            `gorm:"index;size:36;not null"`
	VehicleID   string            `gorm:"index;size:36;not null"`
	GarageID    string            `gorm:"index;size:36;not null"`
	ServiceType string            `gorm:"size:128;not null"`
	Status      AppointmentStatus `gorm:"type:varchar(16);index;not null"`
	StartTime   time.Time         `gorm:"not null"`
	EndTime     time.Time         `gorm:"not null"`
	Notes       string            `gorm:"size:1024"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	// Associations
	Account Account `gorm:"constraint:OnDelete:CASCADE"`
	Vehicle Vehicle
	Garage  Garage
}

// RepairStatus is the garage-reported tracking state, independent from the
// appointment status.
type RepairStatus string

const (
	RepairReceived   RepairStatus = "received"
	RepairDiagnosing RepairStatus = "diagnosing"
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
)

// RepairTracking is the zero-or-one tracking record attached to an appointment.
type RepairTracking struct {
	AppointmentID string       `gorm:"primaryKey;size:36"`
	Status        RepairStatus `gorm:"type:varchar(16);not null"`
	Description   string       `gorm:"size:1024"`
	UpdatedAt     time.Time    `gorm:"not null"`

	// Associations
	Appointment Appointment `gorm:"constraint:OnDelete:CASCADE"`
}
