package adapter

import (
	"context"
	"time"
)

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter counts hits per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Notifier delivers short operational messages to administrators.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TaskRunner executes fire-and-forget background work.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}
