package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"keepers-ledger/internal/logger"
)

// Redis backs the cache with a shared redis instance so catalog
// invalidation reaches every process. Read errors degrade to a miss; the
// catalog services reload from the database on a miss anyway.
type Redis struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedis(log *logger.Logger, addr string) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis addr is empty")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Redis{log: log.With("component", "redis_cache"), rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
