package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carslink-backend/internal/auth"
	"carslink-backend/internal/model"
)

// CreateAccount inserts a new account after checking email uniqueness inside
// the transaction.
func (s *gormStore) CreateAccount(ctx context.Context, acct *model.Account) error {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if acct.Role == "" {
		acct.Role = "client"
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Account{}).Where("email = ?", acct.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return auth.NewError(auth.KindEmailTaken, fmt.Errorf("email %s already registered", acct.Email))
		}
		if err := tx.Create(acct).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var acct model.Account
	err := s.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&acct).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &acct, nil
}

func (s *gormStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var acct model.Account
	err := s.db.WithContext(ctx).Where("email = ? AND deleted = ?", email, false).First(&acct).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &acct, nil
}

func (s *gormStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) ConfirmEmail(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("email_confirmed", true)
	if res.Error != nil {
		return fmt.Errorf("failed to confirm email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) UpdateAccount(ctx context.Context, acct *model.Account) error {
	res := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND deleted = ?", acct.ID, false).
		Updates(map[string]any{
			"first_name": acct.FirstName,
			"last_name":  acct.LastName,
			"phone":      acct.Phone,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteAccount flags the account; rows are never hard-deleted.
func (s *gormStore) SoftDeleteAccount(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
