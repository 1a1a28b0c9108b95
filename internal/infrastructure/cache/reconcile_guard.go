package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// reconcileKeyPrefix namespaces guard keys in Redis
const reconcileKeyPrefix = "cart:reconcile:"

// InMemoryReconcileGuard serializes reconciliation runs per user within a
// single process. Entries expire after the configured TTL so a crashed
// run cannot wedge a user forever.
type InMemoryReconcileGuard struct {
	mu      sync.Mutex
	active  map[uuid.UUID]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewInMemoryReconcileGuard creates a new in-memory guard with the given TTL
func NewInMemoryReconcileGuard(ttl time.Duration) *InMemoryReconcileGuard {
	return &InMemoryReconcileGuard{
		active:  make(map[uuid.UUID]time.Time),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Begin claims the reconciliation slot for a user. Returns false when a
// non-expired run is already active.
func (g *InMemoryReconcileGuard) Begin(ctx context.Context, userID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.nowFunc()
	if startedAt, held := g.active[userID]; held && now.Sub(startedAt) < g.ttl {
		return false, nil
	}
	g.active[userID] = now
	return true, nil
}

// End releases the reconciliation slot for a user
func (g *InMemoryReconcileGuard) End(ctx context.Context, userID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, userID)
	return nil
}

// RedisReconcileGuard serializes reconciliation runs per user across
// instances. The slot is claimed with SETNX so exactly one instance wins;
// the TTL reclaims slots left behind by crashed runs.
type RedisReconcileGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReconcileGuard creates a new Redis-backed guard with the given TTL
func NewRedisReconcileGuard(client *redis.Client, ttl time.Duration) *RedisReconcileGuard {
	return &RedisReconcileGuard{client: client, ttl: ttl}
}

// Begin claims the reconciliation slot for a user
func (g *RedisReconcileGuard) Begin(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := reconcileKeyPrefix + userID.String()
	claimed, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reconcile slot: %w", err)
	}
	return claimed, nil
}

// End releases the reconciliation slot for a user
func (g *RedisReconcileGuard) End(ctx context.Context, userID uuid.UUID) error {
	key := reconcileKeyPrefix + userID.String()
	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release reconcile slot: %w", err)
	}
	return nil
}
