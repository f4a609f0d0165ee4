package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carslink-backend/internal/model"
)

func (s *gormStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.Plate = model.NormalizePlate(v.Plate)
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (s *gormStore) ListVehicles(ctx context.Context, accountID string) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *gormStore) GetVehicle(ctx context.Context, id, accountID string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).First(&v).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &v, nil
}

func (s *gormStore) UpdateVehicle(ctx context.Context, v *model.Vehicle) error {
	v.Plate = model.NormalizePlate(v.Plate)
	res := s.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("id = ? AND account_id = ?", v.ID, v.AccountID).
		Updates(map[string]any{
			"brand":     v.Brand,
			"model":     v.Model,
			"year":      v.Year,
			"plate":     v.Plate,
			"vin":       v.VIN,
			"mileage":   v.Mileage,
			"fuel_type": v.FuelType,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteVehicle(ctx context.Context, id, accountID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&model.Vehicle{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
