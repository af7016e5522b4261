package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"team11_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DashboardCache keeps a user's dashboard summaries between requests.
// Implementations swallow their own errors: a cache never fails a request.
type DashboardCache interface {
	Get(ctx context.Context, userID uint) ([]SubmissionSummary, bool)
	Set(ctx context.Context, userID uint, items []SubmissionSummary)
	Invalidate(ctx context.Context, userID uint)
}

type RedisDashboardCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) *RedisDashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisDashboardCache{Client: client, TTL: ttl}
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("team11:dashboard:%d", userID)
}

func (c *RedisDashboardCache) Get(ctx context.Context, userID uint) ([]SubmissionSummary, bool) {
	raw, err := c.Client.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("dashboard cache read failed", zap.Uint("userId", userID), zap.Error(err))
		}
		return nil, false
	}

	var items []SubmissionSummary
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Log.Warn("dashboard cache entry corrupt", zap.Uint("userId", userID), zap.Error(err))
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return items, true
}

func (c *RedisDashboardCache) Set(ctx context.Context, userID uint, items []SubmissionSummary) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, dashboardKey(userID), raw, c.TTL).Err(); err != nil {
		logger.Log.Warn("dashboard cache write failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context, userID uint) {
	if err := c.Client.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		logger.Log.Warn("dashboard cache invalidation failed", zap.Uint("userId", userID), zap.Error(err))
	}
}
