package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/config"
)

// RateLimiter tracks failed login attempts per email using Redis
type RateLimiter interface {
	// Allow reports whether another login attempt is permitted for email
	Allow(ctx context.Context, email string) (bool, error)

	// RecordFailure counts a failed attempt inside the attempt window
	RecordFailure(ctx context.Context, email string) error

	// Reset clears the counter after a successful login
	Reset(ctx context.Context, email string) error

	// Close closes the Redis connection
	Close() error
}

type redisRateLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

// NewRateLimiter creates a new Redis-based login limiter
func NewRateLimiter(cfg *config.Config, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("❌ [RateLimiter] Failed to connect to Redis", "error", err)
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [RateLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
	)

	return NewRateLimiterWithClient(client, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, logger), nil
}

// NewRateLimiterWithClient builds a limiter on an existing client
func NewRateLimiterWithClient(client *redis.Client, maxAttempts int64, window time.Duration, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// loginKey generates the Redis key for failed login attempts
// Format: rate:login:{email}
func loginKey(email string) string {
	return "rate:login:" + strings.ToLower(strings.TrimSpace(email))
}

func (r *redisRateLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if r.maxAttempts <= 0 {
		return true, nil
	}

	count, err := r.client.Get(ctx, loginKey(email)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to get login attempts", "error", err)
		// On error, allow the request but log it
		return true, err
	}

	return count < r.maxAttempts, nil
}

func (r *redisRateLimiter) RecordFailure(ctx context.Context, email string) error {
	key := loginKey(email)

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to record login failure", "error", err)
		return err
	}
	return nil
}

func (r *redisRateLimiter) Reset(ctx context.Context, email string) error {
	return r.client.Del(ctx, loginKey(email)).Err()
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - login throttling is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, email string) (bool, error) {
	return true, nil
}

func (r *NoOpRateLimiter) RecordFailure(ctx context.Context, email string) error {
	return nil
}

func (r *NoOpRateLimiter) Reset(ctx context.Context, email string) error {
	return nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}
