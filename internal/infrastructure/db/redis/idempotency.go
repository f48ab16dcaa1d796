package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayTTL = time.Hour

// ChargeIdempotency makes /deduct safe to retry. The post-charge balance
// is stored under charge:<account_id>:<key>; replaying the key returns
// that balance instead of charging again.
type ChargeIdempotency struct {
	client *redis.Client
}

func NewChargeIdempotency(client *redis.Client) *ChargeIdempotency {
	return &ChargeIdempotency{client: client}
}

// Lookup returns the balance recorded for this charge, if any.
func (c *ChargeIdempotency) Lookup(ctx context.Context, accountID, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(accountID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q", val)
	}
	return balance, true, nil
}

// Record stores the outcome of a completed charge (expires after replayTTL).
func (c *ChargeIdempotency) Record(ctx context.Context, accountID, key string, balance int64) error {
	return c.client.Set(ctx, c.key(accountID, key), strconv.FormatInt(balance, 10), replayTTL).Err()
}

func (c *ChargeIdempotency) key(accountID, key string) string {
	return fmt.Sprintf("charge:%s:%s", accountID, key)
}
