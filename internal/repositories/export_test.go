package repository

import (
	"time"

	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/redis/go-redis/v9"
)

// SetMaxRowsPerStatement lowers the insert split threshold for a test.
func SetMaxRowsPerStatement(n int) (restore func()) {
	prev := maxRowsPerStatement
	maxRowsPerStatement = n
	return func() { maxRowsPerStatement = prev }
}

// NewRateLimitRepoAt returns a limiter whose clock is frozen at now.
func NewRateLimitRepoAt(client *redis.Client, cfg config.RateLimitConfig, now time.Time) RateLimitRepository {
	return &redisRateLimiter{client: client, cfg: cfg, now: func() time.Time { return now }}
}
