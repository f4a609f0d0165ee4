package store

import (
	"context"
	"fmt"

	"carslink-backend/internal/model"
)

func (s *gormStore) ListGarages(ctx context.Context, city string) ([]model.Garage, error) {
	q := s.db.WithContext(ctx).Preload("Services").Order("name")
	if city != "" {
		q = q.Where("city = ?", city)
	}

	var garages []model.Garage
	if err := q.Find(&garages).Error; err != nil {
		return nil, fmt.Errorf("failed to list garages: %w", err)
	}
	return garages, nil
}

func (s *gormStore) GetGarage(ctx context.Context, id string) (*model.Garage, error) {
	var g model.Garage
	err := s.db.WithContext(ctx).Preload("Services").Where("id = ?", id).First(&g).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &g, nil
}
