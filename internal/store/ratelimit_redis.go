package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitRedisStore is a Redis implementation of ratelimit.Store. Each
// client's records live in a sorted set keyed by client, scored by the record
// timestamp in unix nanoseconds. Members carry a UUID so two records in the
// same nanosecond do not collide.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store. ttl is
// applied to each client's set on every write as a backstop for keys that
// lazy eviction never revisits; callers should pass at least the window
// duration.
func NewRateLimitRedisStore(client *redis.Client, ttl time.Duration) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
		ttl:    ttl,
	}
}

func (r *RateLimitRedisStore) Record(ctx context.Context, clientID string, at time.Time) error {
	key := r.prefix + clientID

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixNano()),
		Member: uuid.NewString(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, err := pipe.Exec(ctx)

	return err
}

func (r *RateLimitRedisStore) CountSince(ctx context.Context, clientID string, since time.Time) (int64, error) {
	return r.client.ZCount(ctx, r.prefix+clientID, nanos(since), "+inf").Result()
}

func (r *RateLimitRedisStore) OldestSince(ctx context.Context, clientID string, since time.Time) (time.Time, bool, error) {
	entries, err := r.client.ZRangeByScoreWithScores(ctx, r.prefix+clientID, &redis.ZRangeBy{
		Min:   nanos(since),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, err
	}

	if len(entries) == 0 {
		return time.Time{}, false, nil
	}

	return time.Unix(0, int64(entries[0].Score)), true, nil
}

// DeleteOlderThan scans all client sets and trims members below the
// threshold. The per-key TTL set on write keeps fully idle clients from
// accumulating even when the scan never reaches them.
func (r *RateLimitRedisStore) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	var removed int64

	max := "(" + nanos(threshold)

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.ZRemRangeByScore(ctx, iter.Val(), "-inf", max).Result()
		if err != nil {
			return removed, err
		}

		removed += n
	}

	if err := iter.Err(); err != nil {
		return removed, err
	}

	return removed, nil
}

func nanos(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}
