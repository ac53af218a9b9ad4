package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/metrics"
	red "emby-cdk-manager/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.AccountRepository = (*accountRepoCacheDecorator)(nil)

// accountRepoCacheDecorator caches pool reads by id, plus a username -> id index.
// Reads inside a transaction always go to the database so row locks hold.
// The remote session token is never cached.
type accountRepoCacheDecorator struct {
	inner repository.AccountRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewAccountRepoCacheDecorator(inner repository.AccountRepository, cache red.RedisClient, ttl time.Duration, log *zerolog.Logger) repository.AccountRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &accountRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: log}
}

func accountIDKey(id string) string         { return fmt.Sprintf("account:id:%s", id) }
func accountUsernameKey(name string) string {
	return fmt.Sprintf("account:username:%s", strings.ToLower(name))
}

func (d *accountRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	if err := d.cache.Del(ctx, accountIDKey(id)); err != nil {
		d.log.Warn().Err(err).Str("account_id", id).Msg("account cache invalidation failed")
	}
}

// write runs fn between two invalidations so a read racing the write cannot re-cache the
// old row. Inside a transaction the second one waits for the commit, since a pool read
// before that still sees the old row.
func (d *accountRepoCacheDecorator) write(ctx context.Context, id string, fn func() error) error {
	d.invalidate(ctx, id)
	err := fn()
	afterCommit(ctx, func(ctx context.Context) { d.invalidate(ctx, id) })
	return err
}

func (d *accountRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, a *model.Account) error {
	return d.write(ctx, a.ID, func() error { return d.inner.Create(ctx, tx, a) })
}

func (d *accountRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, a *model.Account) error {
	return d.write(ctx, a.ID, func() error { return d.inner.Update(ctx, tx, a) })
}

func (d *accountRepoCacheDecorator) SetExternalSession(ctx context.Context, tx repository.Tx, id, externalID, token string) error {
	return d.write(ctx, id, func() error { return d.inner.SetExternalSession(ctx, tx, id, externalID, token) })
}

func (d *accountRepoCacheDecorator) SetActive(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error) {
	var changed bool
	err := d.write(ctx, id, func() error {
		var err error
		changed, err = d.inner.SetActive(ctx, tx, id, active, remote, remoteErr)
		return err
	})
	return changed, err
}

func (d *accountRepoCacheDecorator) SetRemoteState(ctx context.Context, tx repository.Tx, id string, state model.RemoteState, remoteErr string) error {
	return d.write(ctx, id, func() error { return d.inner.SetRemoteState(ctx, tx, id, state, remoteErr) })
}

func (d *accountRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	if tx != nil {
		metrics.IncCacheRequest("account", "bypass")
		return d.inner.FindByID(ctx, tx, id)
	}
	key := accountIDKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var acc model.Account
		if json.Unmarshal([]byte(val), &acc) == nil {
			metrics.IncCacheRequest("account", "hit")
			return &acc, nil
		}
	} else if !red.IsMiss(err) {
		d.log.Warn().Err(err).Str("key", key).Msg("account cache read failed")
	}

	metrics.IncCacheRequest("account", "miss")
	acc, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, acc)
	return acc, nil
}

func (d *accountRepoCacheDecorator) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	if tx != nil {
		metrics.IncCacheRequest("account", "bypass")
		return d.inner.FindByUsername(ctx, tx, username)
	}
	if id, err := d.cache.Get(ctx, accountUsernameKey(username)); err == nil && id != "" {
		return d.FindByID(ctx, tx, id)
	}

	metrics.IncCacheRequest("account", "miss")
	acc, err := d.inner.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	d.store(ctx, acc)
	return acc, nil
}

func (d *accountRepoCacheDecorator) store(ctx context.Context, acc *model.Account) {
	if acc == nil {
		return
	}
	bytes, err := json.Marshal(acc)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, accountIDKey(acc.ID), bytes, d.ttl)
	_ = d.cache.Set(ctx, accountUsernameKey(acc.Username), acc.ID, d.ttl)
}

// Pass-through methods that don't need caching
func (d *accountRepoCacheDecorator) ExternalSession(ctx context.Context, tx repository.Tx, id string) (string, string, error) {
	return d.inner.ExternalSession(ctx, tx, id)
}

func (d *accountRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	return d.inner.List(ctx, tx, offset, limit)
}

func (d *accountRepoCacheDecorator) ListExpiredActive(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Account, error) {
	return d.inner.ListExpiredActive(ctx, tx, now, limit)
}

func (d *accountRepoCacheDecorator) ListRemotePending(ctx context.Context, tx repository.Tx, limit int) ([]*model.Account, error) {
	return d.inner.ListRemotePending(ctx, tx, limit)
}
