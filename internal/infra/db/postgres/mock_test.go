//go:build !integration

package postgres

import (
	"context"
	"sync"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
	red "emby-cdk-manager/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerAccountRepo mocks the database repository that the Account decorator wraps.
type mockInnerAccountRepo struct {
	repository.AccountRepository

	FindByIDFunc       func(ctx context.Context, tx repository.Tx, id string) (*model.Account, error)
	FindByUsernameFunc func(ctx context.Context, tx repository.Tx, username string) (*model.Account, error)
	SetActiveFunc      func(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error)
	UpdateFunc         func(ctx context.Context, tx repository.Tx, a *model.Account) error
}

func (m *mockInnerAccountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerAccountRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	return m.FindByUsernameFunc(ctx, tx, username)
}
func (m *mockInnerAccountRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error) {
	return m.SetActiveFunc(ctx, tx, id, active, remote, remoteErr)
}
func (m *mockInnerAccountRepo) Update(ctx context.Context, tx repository.Tx, a *model.Account) error {
	return m.UpdateFunc(ctx, tx, a)
}

// mockInnerTemplateRepo mocks the database repository that the Template decorator wraps.
type mockInnerTemplateRepo struct {
	CreateFunc   func(ctx context.Context, tx repository.Tx, t *model.Template) error
	UpdateFunc   func(ctx context.Context, tx repository.Tx, t *model.Template) error
	DeleteFunc   func(ctx context.Context, tx repository.Tx, id string) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Template, error)
	ListAllFunc  func(ctx context.Context, tx repository.Tx) ([]*model.Template, error)
}

func (m *mockInnerTemplateRepo) Create(ctx context.Context, tx repository.Tx, t *model.Template) error {
	return m.CreateFunc(ctx, tx, t)
}
func (m *mockInnerTemplateRepo) Update(ctx context.Context, tx repository.Tx, t *model.Template) error {
	return m.UpdateFunc(ctx, tx, t)
}
func (m *mockInnerTemplateRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}
func (m *mockInnerTemplateRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Template, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerTemplateRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Template, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockInnerMediaRepo mocks the database repository that the media feed decorator wraps.
type mockInnerMediaRepo struct {
	CreateFunc func(ctx context.Context, tx repository.Tx, m *model.MediaItem) error
	LatestFunc func(ctx context.Context, tx repository.Tx, limit int) ([]*model.MediaItem, error)
}

func (m *mockInnerMediaRepo) Create(ctx context.Context, tx repository.Tx, it *model.MediaItem) error {
	return m.CreateFunc(ctx, tx, it)
}
func (m *mockInnerMediaRepo) FindByEmbyID(ctx context.Context, tx repository.Tx, embyID string) (*model.MediaItem, error) {
	return nil, domain.ErrNotFound
}
func (m *mockInnerMediaRepo) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.MediaItem, error) {
	return m.LatestFunc(ctx, tx, limit)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc        func(ctx context.Context, key string) (string, error)
	SetFunc        func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc        func(ctx context.Context, keys ...string) error
	PingFunc       func(ctx context.Context) error
	IncrWindowFunc func(ctx context.Context, key string, window time.Duration) (int64, error)
	CloseFunc      func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	return m.IncrWindowFunc(ctx, key, window)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }

// memRedis is a map-backed mockRedisClient for read-through round trips.
type memRedis struct {
	mu   sync.Mutex
	data map[string]string
	dels []string
}

func newMemRedis() *memRedis { return &memRedis{data: map[string]string{}} }

func (r *memRedis) client() *mockRedisClient {
	return &mockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			v, ok := r.data[key]
			if !ok {
				return "", redis.Nil
			}
			return v, nil
		},
		SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			switch v := value.(type) {
			case []byte:
				r.data[key] = string(v)
			case string:
				r.data[key] = v
			}
			return nil
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			for _, k := range keys {
				delete(r.data, k)
				r.dels = append(r.dels, k)
			}
			return nil
		},
	}
}

func (r *memRedis) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}
