package model

import "time"

// Garage is a partner workshop that takes appointments.
type Garage struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:256;not null"`
	Address   string `gorm:"size:256"`
	City      string `gorm:"size:128;index"`
	Latitude  float64
	Longitude float64
	Phone     string `gorm:"size:32"`
	Email     string `gorm:"size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Services []GarageService `gorm:"foreignKey:GarageID"`
}

// GarageService is a single service a garage offers (oil change, brakes, ...).
type GarageService struct {
	ID              string `gorm:"primaryKey;size:36"`
	GarageID        string `gorm:"index;size:36;not null"`
	Name            string `gorm:"size:128;not null"`
	Description     string `gorm:"size:512"`
	PriceCents      int64  `gorm:"not null;default:0"`
	DurationMinutes int    `gorm:"not null;default:60"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
