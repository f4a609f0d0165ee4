package model

import (
	"strings"
	"time"
)

// Vehicle is a car registered by an account.
type Vehicle struct {
	ID        string `gorm:"primaryKey;size:36"`
	AccountID string `gorm:"index;size:36;not null"`
	Brand     string `gorm:"size:64;not null"`
	Model     string `gorm:"size:64;not null"`
	Year      int
	Plate     string `gorm:"size:32;not null"`
	VIN       string `gorm:"size:64"`
	Mileage   int
	FuelType  string `gorm:"size:16"` // essence / diesel / hybride / electrique
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Account Account `gorm:"constraint:OnDelete:CASCADE"`
}

// NormalizePlate strips spaces and dashes and uppercases a plate number so
// lookups do not depend on how the user typed it.
func NormalizePlate(plate string) string {
	s := strings.ToUpper(strings.TrimSpace(plate))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
