package model

import "time"

// Notification is a per-account in-app notification row.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36"`
	AccountID string    `gorm:"index;size:36;not null"`
	Kind      string    `gorm:"size:32;not null"` // appointment_status, repair_update, new_message, system
	Title     string    `gorm:"size:256;not null"`
	Body      string    `gorm:"size:1024"`
	Read      bool      `gorm:"not null;default:false"`
	Archived  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index;not null"`
	UpdatedAt time.Time
}

// NotificationCounts summarizes an account's notification list.
type NotificationCounts struct {
	All      int64 `json:"all"`
	Unread   int64 `json:"unread"`
	Read     int64 `json:"read"`
	Archived int64 `json:"archived"`
}

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	AccountID string    `gorm:"index;size:36;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
