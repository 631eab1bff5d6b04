package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-ops/projectflow/internal/logging"
)

// IdempotencyGuard keys folder provisioning by record id + computed title so
// concurrent or retried webhook deliveries create at most one folder per
// logical project. With no store configured the guard is a no-op.
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard creates a guard over the given redis client.
// client may be nil.
func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{client: client, ttl: ttl}
}

func provisionKey(recordID, fullTitle string) string {
	return fmt.Sprintf("provision:%s:%s", recordID, fullTitle)
}

// Acquire claims the provisioning slot for this record+title. Returns false
// when another delivery already claimed it. Store errors fail open: the
// claim is granted and the error logged, since duplicate folders beat
// dropped provisioning.
func (g *IdempotencyGuard) Acquire(ctx context.Context, recordID, fullTitle string) bool {
	if g == nil || g.client == nil {
		return true
	}

	ok, err := g.client.SetNX(ctx, provisionKey(recordID, fullTitle), 1, g.ttl).Result()
	if err != nil {
		logging.NewLogger(ctx).LogError("idempotency_acquire", err)
		return true
	}
	return ok
}

// Release frees the slot so a retried delivery can provision again after a
// failed folder creation.
func (g *IdempotencyGuard) Release(ctx context.Context, recordID, fullTitle string) {
	if g == nil || g.client == nil {
		return
	}

	if err := g.client.Del(ctx, provisionKey(recordID, fullTitle)).Err(); err != nil {
		logging.NewLogger(ctx).LogError("idempotency_release", err)
	}
}
