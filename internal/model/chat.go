package model

import "time"

// SenderType identifies which side of a chat wrote a message.
type SenderType string

const (
	SenderClient SenderType = "client"
	SenderGarage SenderType = "garage"
)

// Chat is the single conversation attached to an appointment. It is created
// lazily when the garage writes its first message.
type Chat struct {
	ID            string `gorm:"primaryKey;size:36"`
	AppointmentID string `gorm:"uniqueIndex;size:36;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Appointment Appointment   `gorm:"constraint:OnDelete:CASCADE"`
	Messages    []ChatMessage `gorm:"foreignKey:ChatID"`
}

// ChatMessage is one message in an appointment chat.
type ChatMessage struct {
	ID         string     `gorm:"primaryKey;size:36"`
	ChatID     string     `gorm:"index;size:36;not null"`
	SenderType SenderType `gorm:"type:varchar(8);not null"`
	Body       string     `gorm:"size:2048;not null"`
	CreatedAt  time.Time  `gorm:"index;not null"`
	ReadAt     *time.Time
}
