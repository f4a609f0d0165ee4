package model

import "time"

// SupportTicket is a help request filed by an account.
type SupportTicket struct {
	ID        string `gorm:"primaryKey;size:36"`
	AccountID string `gorm:"index;size:36;not null"`
	Subject   string `gorm:"size:256;not null"`
	Body      string `gorm:"size:4096;not null"`
	Status    string `gorm:"size:16;not null;default:'open'"` // open / closed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invoice is issued by a garage for a completed appointment.
type Invoice struct {
	ID            string    `gorm:"primaryKey;size:36"`
	AppointmentID string    `gorm:"index;size:36;not null"`
	AmountCents   int64     `gorm:"not null"`
	Currency      string    `gorm:"size:8;not null;default:'EUR'"`
	Paid          bool      `gorm:"not null;default:false"`
	IssuedAt      time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Appointment Appointment `gorm:"constraint:OnDelete:CASCADE"`
}

// AppSetting is a key/value row for runtime-tunable settings.
type AppSetting struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"size:1024;not null"`
	UpdatedAt time.Time
}
