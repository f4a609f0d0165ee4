package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"carslink-backend/internal/model"
)

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the account's notifications, newest first,
// filtered by "all", "unread", "read" or "archived". The first three exclude
// archived rows, matching the client's tab semantics.
func (s *gormStore) ListNotifications(ctx context.Context, accountID, filter string) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).Where("account_id = ?", accountID)

	switch filter {
	case "", "all":
		q = q.Where("archived = ?", false)
	case "unread":
		q = q.Where("archived = ? AND read = ?", false, false)
	case "read":
		q = q.Where("archived = ? AND read = ?", false, true)
	case "archived":
		q = q.Where("archived = ?", true)
	default:
		return nil, fmt.Errorf("unknown notification filter %q", filter)
	}

	var notifications []model.Notification
	if err := q.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// CountNotifications computes the counts record from the database rather than
// maintaining a client-side shadow copy.
func (s *gormStore) CountNotifications(ctx context.Context, accountID string) (*model.NotificationCounts, error) {
	type aggRow struct {
		Read     bool
		Archived bool
		N        int64
	}
	var rows []aggRow
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Select("read, archived, COUNT(*) as n").
		Where("account_id = ?", accountID).
		Group("read, archived").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	counts := &model.NotificationCounts{}
	for _, r := range rows {
		if r.Archived {
			counts.Archived += r.N
			continue
		}
		counts.All += r.N
		if r.Read {
			counts.Read += r.N
		} else {
			counts.Unread += r.N
		}
	}
	return counts, nil
}

func (s *gormStore) MarkNotificationRead(ctx context.Context, id, accountID string) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND account_id = ?", id, accountID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) MarkAllNotificationsRead(ctx context.Context, accountID string) error {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("account_id = ? AND read = ?", accountID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *gormStore) SetNotificationArchived(ctx context.Context, id, accountID string, archived bool) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND account_id = ?", id, accountID).
		Update("archived", archived)
	if res.Error != nil {
		return fmt.Errorf("failed to set notification archived: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteNotification(ctx context.Context, id, accountID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&model.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteAllNotifications(ctx context.Context, accountID string) error {
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.Notification{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
