package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/metrics"
	red "emby-cdk-manager/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

var _ repository.TemplateRepository = (*templateRepoCacheDecorator)(nil)

const templatesAllKey = "templates:all"

type templateRepoCacheDecorator struct {
	inner repository.TemplateRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTemplateRepoCacheDecorator(inner repository.TemplateRepository, cache red.RedisClient, ttl time.Duration) repository.TemplateRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &templateRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func templateKey(id string) string { return fmt.Sprintf("template:%s", id) }

func (d *templateRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Template, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := templateKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var tpl model.Template
		if json.Unmarshal([]byte(val), &tpl) == nil {
			metrics.IncCacheRequest("template", "hit")
			return &tpl, nil
		}
	}

	metrics.IncCacheRequest("template", "miss")
	tpl, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(tpl); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return tpl, nil
}

func (d *templateRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Template, error) {
	val, err := d.cache.Get(ctx, templatesAllKey)
	if err == nil {
		var list []*model.Template
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("template_list", "hit")
			return list, nil
		}
	}
	if err != nil && err != redis.Nil {
		metrics.IncCacheRequest("template_list", "error")
	}

	metrics.IncCacheRequest("template_list", "miss")
	list, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(list); err == nil {
		_ = d.cache.Set(ctx, templatesAllKey, bytes, d.ttl)
	}
	return list, nil
}

// For write operations, we must invalidate the cache.
func (d *templateRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, t *model.Template) error {
	_ = d.cache.Del(ctx, templatesAllKey)
	return d.inner.Create(ctx, tx, t)
}

func (d *templateRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, t *model.Template) error {
	_ = d.cache.Del(ctx, templateKey(t.ID), templatesAllKey)
	err := d.inner.Update(ctx, tx, t)
	afterCommit(ctx, func(ctx context.Context) { _ = d.cache.Del(ctx, templateKey(t.ID), templatesAllKey) })
	return err
}

func (d *templateRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, templateKey(id), templatesAllKey)
	return d.inner.Delete(ctx, tx, id)
}
