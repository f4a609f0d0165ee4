package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carslink-backend/internal/chat"
	"carslink-backend/internal/model"
)

// GetChatMessages returns the appointment's conversation in chronological
// order and marks unread garage messages as read.
func (s *gormStore) GetChatMessages(ctx context.Context, appointmentID, accountID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chatRecord, err := findChat(tx, appointmentID, accountID)
		if err != nil {
			return err
		}
		if chatRecord == nil {
			// No chat yet: the garage has not opened the conversation.
			return nil
		}

		if err := tx.Where("chat_id = ?", chatRecord.ID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.ChatMessage{}).
			Where("chat_id = ? AND sender_type = ? AND read_at IS NULL", chatRecord.ID, model.SenderGarage).
			Update("read_at", now).Error; err != nil {
			return fmt.Errorf("failed to mark messages read: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SendClientMessage inserts a client message, enforcing the turn-taking rule
// inside the transaction. The chat row is locked while the rule is checked:
// under read committed two concurrent sends would otherwise both read "garage
// wrote last" and both insert.
func (s *gormStore) SendClientMessage(ctx context.Context, appointmentID, accountID, body string) (*model.ChatMessage, error) {
	var message *model.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chatRecord, err := findChat(tx, appointmentID, accountID)
		if err != nil {
			return err
		}
		if chatRecord == nil {
			// The chat is created by the garage's first message; until then
			// the client has nobody to talk to.
			return ErrNotFound
		}

		var messages []model.ChatMessage
		if err := tx.Where("chat_id = ?", chatRecord.ID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		if !chat.CanSend(messages) {
			return ErrNotYourTurn
		}

		m := &model.ChatMessage{
			ID:         uuid.NewString(),
			ChatID:     chatRecord.ID,
			SenderType: model.SenderClient,
			Body:       body,
		}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		message = m
		return nil
	})
	return message, err
}

// SendGarageMessage inserts a garage message, lazily creating the chat, and
// records a new-message notification for the account.
func (s *gormStore) SendGarageMessage(ctx context.Context, appointmentID, body string) (*model.ChatMessage, *model.Notification, error) {
	var (
		message      *model.ChatMessage
		notification *model.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appointment model.Appointment
		if err := tx.Where("id = ?", appointmentID).First(&appointment).Error; err != nil {
			return translateNotFound(err)
		}

		var chatRecord model.Chat
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("appointment_id = ?", appointmentID).
			First(&chatRecord).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			chatRecord = model.Chat{ID: uuid.NewString(), AppointmentID: appointmentID}
			if err := tx.Create(&chatRecord).Error; err != nil {
				return fmt.Errorf("failed to create chat: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to fetch chat: %w", err)
		}

		m := &model.ChatMessage{
			ID:         uuid.NewString(),
			ChatID:     chatRecord.ID,
			SenderType: model.SenderGarage,
			Body:       body,
		}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}

		n := &model.Notification{
			ID:        uuid.NewString(),
			AccountID: appointment.AccountID,
			Kind:      "new_message",
			Title:     "Nouveau message du garage",
			Body:      body,
		}
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		message = m
		notification = n
		return nil
	})
	return message, notification, err
}

// findChat loads the appointment's chat after checking the appointment
// belongs to the account. Returns nil when no chat exists yet. An empty
// accountID skips the ownership check (garage-side callers). The chat row is
// loaded FOR UPDATE so concurrent writers to the same conversation serialize.
func findChat(tx *gorm.DB, appointmentID, accountID string) (*model.Chat, error) {
	q := tx.Model(&model.Appointment{}).Where("id = ?", appointmentID)
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check appointment: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var chatRecord model.Chat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("appointment_id = ?", appointmentID).
		First(&chatRecord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	return &chatRecord, nil
}
