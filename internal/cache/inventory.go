package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bagportal/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	RequesterKeyPrefix = "requester:%d"
	SectorsKey         = "sectors:all"
)

const (
	RequesterTTL = 5 * time.Minute
	SectorsTTL   = time.Hour
)

func RequesterKey(requesterID uint) string {
	return fmt.Sprintf(RequesterKeyPrefix, requesterID)
}

// Aside loads key into dest from Redis, or calls fetch to fill dest and stores the result.
// Redis failures never fail the call; fetch errors are returned as-is.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		Invalidate(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		observability.Logger.WarnContext(ctx, "Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateRequester(ctx context.Context, requesterID uint) {
	Invalidate(ctx, RequesterKey(requesterID))
}
