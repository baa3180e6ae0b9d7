package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func key(subject, action string) string {
	return fmt.Sprintf("evote:rate_limit:%s:%s", action, subject)
}

// CheckAndSet reports whether subject may perform action now and, if so,
// locks it for limit. A nil client or a zero limit always allows.
func CheckAndSet(ctx context.Context, rdb *redis.Client, subject, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func TTL(ctx context.Context, rdb *redis.Client, subject, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, action)).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, subject, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(subject, action)).Result()
	return err
}

// Once reports true the first time it is called for name within ttl.
// Without Redis it always reports true; callers keep their own local marker.
func Once(ctx context.Context, rdb *redis.Client, name string, ttl time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}
	ok, err := rdb.SetNX(ctx, "evote:once:"+name, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set marker in redis: %w", err)
	}
	return ok, nil
}
