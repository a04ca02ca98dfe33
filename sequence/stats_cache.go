package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/redis/go-redis/v9"
)

// Both keys share a hash tag so MGET and WATCH stay on one cluster slot.
const (
	statsKey    = "switches:{stats}"
	statsGenKey = "switches:{stats}:gen"
)

// StatsCache keeps the last computed stats in Redis for ttl. Writers drop
// it through Invalidate, which also bumps a generation counter so a
// snapshot computed before the write is never stored after it.
type StatsCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewStatsCache(rdb redis.UniversalClient, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

var _ lifecycle.StatsCache = (*StatsCache)(nil)

// Get returns (nil, gen, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context) (*lifecycle.Stats, int64, error) {
	vals, err := c.rdb.MGet(ctx, statsGenKey, statsKey).Result()
	if err != nil {
		return nil, 0, err
	}
	var gen int64
	if raw, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, err
		}
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, nil
	}
	var st lifecycle.Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, gen, err
	}
	return &st, gen, nil
}

// Set writes st only while the generation is still gen. A concurrent
// Invalidate either moves the generation first or aborts the transaction.
func (c *StatsCache) Set(ctx context.Context, gen int64, st *lifecycle.Stats) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, statsGenKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsKey, b, c.ttl)
			return nil
		})
		return err
	}, statsGenKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, statsGenKey)
		pipe.Del(ctx, statsKey)
		return nil
	})
	return err
}
