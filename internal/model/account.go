package model

import "time"

// Account represents a CarsLink client identity.
type Account struct {
	ID             string `gorm:"primaryKey;size:36"`
	FirstName      string `gorm:"size:128;not null"`
	LastName       string `gorm:"size:128;not null"`
	Email          string `gorm:"uniqueIndex;size:256;not null"`
	Phone          string `gorm:"size:32"`
	Role           string `gorm:"size:16;not null;default:'client'"`
	PasswordHash   string `gorm:"size:128;not null"`
	EmailConfirmed bool   `gorm:"not null;default:false"`
	// Accounts are never hard-deleted, only flagged.
	Deleted   bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Vehicles []Vehicle `gorm:"foreignKey:AccountID"`
}
