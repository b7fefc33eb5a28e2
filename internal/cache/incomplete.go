package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	incompleteCountKey = "todos:incomplete_count"
	// bumped by every Invalidate; a recount only lands if it did not move
	incompleteGenKey = "todos:incomplete_count:gen"
)

// IncompleteCounter caches the number of unchecked tasks. Mutations bump a
// generation and drop the count; a reader that recounted from the store
// writes back only when no mutation happened since its Get.
type IncompleteCounter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIncompleteCounter(rdb *redis.Client, ttl time.Duration) *IncompleteCounter {
	return &IncompleteCounter{rdb: rdb, ttl: ttl}
}

// Get returns the cached count, whether it was present, and the generation
// to hand to Fill after a recount.
func (c *IncompleteCounter) Get(ctx context.Context) (int, bool, int64, error) {
	pipe := c.rdb.TxPipeline()
	countCmd := pipe.Get(ctx, incompleteCountKey)
	genCmd := pipe.Get(ctx, incompleteGenKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, 0, err
	}

	gen, err := genCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, 0, err
	}
	n, err := countCmd.Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, gen, nil
	}
	if err != nil {
		return 0, false, 0, err
	}
	return n, true, gen, nil
}

// Fill stores n if the generation is still gen. It reports whether the
// value was stored.
func (c *IncompleteCounter) Fill(ctx context.Context, gen int64, n int) (bool, error) {
	stored := false
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, incompleteGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, incompleteCountKey, n, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, incompleteGenKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

func (c *IncompleteCounter) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, incompleteGenKey)
		pipe.Del(ctx, incompleteCountKey)
		return nil
	})
	return err
}
