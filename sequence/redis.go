package sequence

import (
	"context"
	"fmt"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/redis/go-redis/v9"
)

func seqKey(name string) string { return fmt.Sprintf("switches:seq:%s", name) }

// RedisAllocator hands out keys with INCR, which is atomic across every
// client of the same Redis.
type RedisAllocator struct {
	rdb  redis.UniversalClient
	name string
}

func NewRedisAllocator(rdb redis.UniversalClient, name string) *RedisAllocator {
	return &RedisAllocator{rdb: rdb, name: name}
}

var _ lifecycle.Allocator = (*RedisAllocator)(nil)

func (a *RedisAllocator) Next(ctx context.Context) (int64, error) {
	n, err := a.rdb.Incr(ctx, seqKey(a.name)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", seqKey(a.name), err)
	}
	return n, nil
}

func (a *RedisAllocator) Reset(ctx context.Context) error {
	return a.rdb.Del(ctx, seqKey(a.name)).Err()
}

// Seed raises the counter to at least floor, e.g. after switching an
// existing database over to Redis allocation. It never lowers it.
func (a *RedisAllocator) Seed(ctx context.Context, floor int64) error {
	key := seqKey(a.name)
	return a.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur >= floor {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, floor, 0)
			return nil
		})
		return err
	}, key)
}
