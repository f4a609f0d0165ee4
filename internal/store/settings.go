package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"carslink-backend/internal/model"
)

// settingsCache caches app-setting rows. Invalidation is explicit via
// InvalidateSettings rather than a module-level timestamp.
type settingsCache struct {
	c *cache.Cache
}

func newSettingsCache() *settingsCache {
	return &settingsCache{c: cache.New(5*time.Minute, 10*time.Minute)}
}

// GetAppSetting returns the value for key, serving repeats from cache.
func (s *gormStore) GetAppSetting(ctx context.Context, key string) (string, error) {
	if v, found := s.settings.c.Get(key); found {
		return v.(string), nil
	}

	var setting model.AppSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return "", translateNotFound(err)
	}

	s.settings.c.SetDefault(key, setting.Value)
	return setting.Value, nil
}

// InvalidateSettings drops every cached setting.
func (s *gormStore) InvalidateSettings() {
	s.settings.c.Flush()
}
