package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
)

// snapshotKeyPrefix namespaces snapshot keys in Redis
const snapshotKeyPrefix = "cart:snapshot:"

// CachingSnapshotProvider wraps a cart.SnapshotProvider with a short-TTL
// in-process cache. Snapshots are advisory (stock is a clamp ceiling, not
// a reservation) so serving one a few seconds old is acceptable; the TTL
// keeps the quantity stepper from hammering the catalog on rapid taps.
type CachingSnapshotProvider struct {
	inner cart.SnapshotProvider
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[cart.LineKey]snapshotEntry
	nowFunc func() time.Time
}

type snapshotEntry struct {
	snap     cart.VariantSnapshot
	cachedAt time.Time
}

// NewCachingSnapshotProvider creates a caching decorator over a provider
func NewCachingSnapshotProvider(inner cart.SnapshotProvider, ttl time.Duration) *CachingSnapshotProvider {
	return &CachingSnapshotProvider{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[cart.LineKey]snapshotEntry),
		nowFunc: time.Now,
	}
}

// VariantSnapshot returns a cached snapshot when fresh, otherwise asks
// the wrapped provider and caches the result
func (p *CachingSnapshotProvider) VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*cart.VariantSnapshot, error) {
	key := cart.LineKey{ProductID: productID, VariantID: variantID}

	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if ok && p.nowFunc().Sub(entry.cachedAt) < p.ttl {
		snap := entry.snap
		return &snap, nil
	}

	snap, err := p.inner.VariantSnapshot(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.entries[key] = snapshotEntry{snap: *snap, cachedAt: p.nowFunc()}
	p.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot for one variant
func (p *CachingSnapshotProvider) Invalidate(productID, variantID uuid.UUID) {
	key := cart.LineKey{ProductID: productID, VariantID: variantID}
	p.mu.Lock()
	delete(p.entries, key)
	p.mu.Unlock()
}

// snapshotPayload is the wire shape of a snapshot in Redis
type snapshotPayload struct {
	Price           *valueobject.Money `json:"price,omitempty"`
	DiscountedPrice *valueobject.Money `json:"discounted_price,omitempty"`
	Stock           int                `json:"stock"`
	WeightValue     string             `json:"weight_value"`
	WeightUnit      string             `json:"weight_unit"`
}

// RedisSnapshotProvider wraps a cart.SnapshotProvider with a Redis-backed
// cache shared across instances. Cache failures degrade to the wrapped
// provider; a broken cache must never block the cart.
type RedisSnapshotProvider struct {
	inner  cart.SnapshotProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSnapshotProvider creates a Redis-backed caching decorator
func NewRedisSnapshotProvider(inner cart.SnapshotProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSnapshotProvider {
	return &RedisSnapshotProvider{inner: inner, client: client, ttl: ttl, logger: logger}
}

// VariantSnapshot returns a cached snapshot when present, otherwise asks
// the wrapped provider and caches the result
func (p *RedisSnapshotProvider) VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*cart.VariantSnapshot, error) {
	key := fmt.Sprintf("%s%s:%s", snapshotKeyPrefix, productID, variantID)

	raw, err := p.client.Get(ctx, key).Bytes()
	if err == nil {
		if snap, decodeErr := decodeSnapshot(raw); decodeErr == nil {
			return snap, nil
		}
		// Corrupt entry; fall through to the provider and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		p.logger.Warn("Snapshot cache read failed", zap.Error(err))
	}

	snap, err := p.inner.VariantSnapshot(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	if raw, encodeErr := encodeSnapshot(snap); encodeErr == nil {
		if setErr := p.client.Set(ctx, key, raw, p.ttl).Err(); setErr != nil {
			p.logger.Warn("Snapshot cache write failed", zap.Error(setErr))
		}
	}
	return snap, nil
}

func encodeSnapshot(snap *cart.VariantSnapshot) ([]byte, error) {
	payload := snapshotPayload{
		Price:           snap.Price,
		DiscountedPrice: snap.DiscountedPrice,
		Stock:           snap.Stock,
		WeightValue:     snap.UnitWeight.Value().String(),
		WeightUnit:      string(snap.UnitWeight.Unit()),
	}
	if payload.WeightUnit == "" {
		payload.WeightUnit = string(valueobject.WeightGrams)
	}
	return json.Marshal(payload)
}

func decodeSnapshot(raw []byte) (*cart.VariantSnapshot, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(payload.WeightValue)
	if err != nil {
		return nil, err
	}
	weight, err := valueobject.NewWeight(value, valueobject.WeightUnit(payload.WeightUnit))
	if err != nil {
		return nil, err
	}
	return &cart.VariantSnapshot{
		Price:           payload.Price,
		DiscountedPrice: payload.DiscountedPrice,
		Stock:           payload.Stock,
		UnitWeight:      weight,
	}, nil
}
