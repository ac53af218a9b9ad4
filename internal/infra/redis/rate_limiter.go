package redis

import (
	"context"
	"time"

	"emby-cdk-manager/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

const rateLimitPrefix = "rate_limit:"

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow counts the attempt and reports whether it stays within limit for the window.
// A non-positive limit disables the check.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	count, err := r.client.IncrWindow(ctx, rateLimitPrefix+key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
