package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotifiedAt returns the stored notified_at of a failed record, nil when unset.
func (l *RedisLedger) NotifiedAt(ctx context.Context, id string) (*time.Time, error) {
	raw, err := l.client.HGet(ctx, l.failedKey(id), "notified_at").Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(redisBackend, "notified_at", err)
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, storageErr(redisBackend, "notified_at", err)
	}
	return &at, nil
}
