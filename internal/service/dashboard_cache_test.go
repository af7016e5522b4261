package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestRedisDashboardCacheSwallowsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewRedisDashboardCache(client, 0)
	assert.Equal(t, 5*time.Minute, cache.TTL)

	ctx := context.Background()
	cache.Set(ctx, 1, []SubmissionSummary{{ID: "x"}})
	items, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, items)
	cache.Invalidate(ctx, 1)
}

func TestDashboardKey(t *testing.T) {
	assert.Equal(t, "team11:dashboard:42", dashboardKey(42))
}
