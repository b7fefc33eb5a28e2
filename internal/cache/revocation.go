package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocations remembers logged-out token ids until they would have
// expired anyway.
type TokenRevocations struct {
	rdb *redis.Client
}

func NewTokenRevocations(rdb *redis.Client) *TokenRevocations {
	return &TokenRevocations{rdb: rdb}
}

func revocationKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

// Revoke marks tokenID revoked until expiresAt. Tokens already past expiry
// are ignored.
func (r *TokenRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revocationKey(tokenID), 1, ttl).Err()
}

func (r *TokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
