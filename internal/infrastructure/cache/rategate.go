package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateGate admits at most one caller per (key, time bucket) using Redis
// SETNX, replacing the source exporter's shared-cache-key throttle.
type RateGate struct {
	client *redis.Client
}

// NewRateGate creates a Redis-backed RateGate.
func NewRateGate(client *redis.Client) *RateGate {
	return &RateGate{client: client}
}

// Admit reports whether the caller is first to claim key within the
// current window-sized bucket (floor(now/window)). The underlying SETNX
// key expires at the end of the bucket, so a crashed caller doesn't
// block the next bucket's admission.
func (g *RateGate) Admit(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, fmt.Errorf("rategate: window must be positive")
	}

	now := time.Now()
	bucket := now.Unix() / int64(window.Seconds())
	bucketKey := fmt.Sprintf("rategate:%s:%d", key, bucket)

	remaining := window - time.Duration(now.Unix()%int64(window.Seconds()))*time.Second
	if remaining <= 0 {
		remaining = window
	}

	ok, err := g.client.SetNX(ctx, bucketKey, "1", remaining).Result()
	if err != nil {
		return false, fmt.Errorf("rategate setnx: %w", err)
	}

	return ok, nil
}
