package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	Allow(ctx context.Context, client string) (bool, int, error)
}

type redisRateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	now    func() time.Time
}

func NewRateLimitRepo(client *redis.Client, cfg config.RateLimitConfig) RateLimitRepository {
	return &redisRateLimiter{client: client, cfg: cfg, now: time.Now}
}

func rateLimitKey(client string) string {
	return fmt.Sprintf("upload_attempts:%s", client)
}

// Allow records an upload attempt by client and reports whether it fits in
// the sliding window. Rejected attempts are recorded too. When the attempt is
// refused it also returns the seconds until the oldest attempt leaves the
// window.
func (r *redisRateLimiter) Allow(ctx context.Context, client string) (bool, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	key := rateLimitKey(client)

	now := r.now()
	window := int64(r.cfg.Window.Seconds())

	// only attempts after this point are counted
	windowStart := now.Unix() - window

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// member is unique per attempt so that attempts in the same second are all kept
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})

	count := pipe.ZCard(ctx, key)

	pipe.Expire(ctx, key, r.cfg.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	if attempts <= r.cfg.MaxUploads {
		logger.Debug("Rate limit check passed", slog.String("client", client), slog.Int64("attempts", attempts))
		return true, 0, nil
	}

	scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
		Key: key, Start: 0, Stop: 0,
	}).Result()
	if err != nil || len(scores) == 0 {
		logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, int(window), nil
	}

	retryAfter := max(int64(scores[0].Score)+window-now.Unix(), 1)

	logger.Warn("Upload rate limit exceeded", slog.String("client", client), slog.Int64("attempts", attempts))
	return false, int(retryAfter), nil
}
