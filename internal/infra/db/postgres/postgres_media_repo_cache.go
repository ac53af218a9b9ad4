package postgres

import (
	"context"
	"encoding/json"
	"time"

	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/metrics"
	red "emby-cdk-manager/internal/infra/redis"
)

var _ repository.MediaItemRepository = (*mediaRepoCacheDecorator)(nil)

const (
	mediaLatestKey = "media:latest"
	// mediaLatestDepth is how many items the cached feed holds; smaller limits are slices of it.
	mediaLatestDepth = 50
)

type mediaRepoCacheDecorator struct {
	inner repository.MediaItemRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewMediaRepoCacheDecorator(inner repository.MediaItemRepository, cache red.RedisClient, ttl time.Duration) repository.MediaItemRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &mediaRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *mediaRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, m *model.MediaItem) error {
	err := d.inner.Create(ctx, tx, m)
	if err == nil {
		_ = d.cache.Del(ctx, mediaLatestKey)
	}
	return err
}

func (d *mediaRepoCacheDecorator) FindByEmbyID(ctx context.Context, tx repository.Tx, embyID string) (*model.MediaItem, error) {
	return d.inner.FindByEmbyID(ctx, tx, embyID)
}

func (d *mediaRepoCacheDecorator) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.MediaItem, error) {
	if limit > mediaLatestDepth {
		metrics.IncCacheRequest("media_latest", "bypass")
		return d.inner.Latest(ctx, tx, limit)
	}
	val, err := d.cache.Get(ctx, mediaLatestKey)
	if err == nil {
		var items []*model.MediaItem
		if json.Unmarshal([]byte(val), &items) == nil {
			metrics.IncCacheRequest("media_latest", "hit")
			return head(items, limit), nil
		}
	}

	metrics.IncCacheRequest("media_latest", "miss")
	items, err := d.inner.Latest(ctx, tx, mediaLatestDepth)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(items); err == nil {
		_ = d.cache.Set(ctx, mediaLatestKey, bytes, d.ttl)
	}
	return head(items, limit), nil
}

func head(items []*model.MediaItem, n int) []*model.MediaItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
