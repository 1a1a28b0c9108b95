package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// InMemoryCartRepository implements cart.Repository with a process-local
// map. It is the repository of choice in tests and serves deployments
// that run without a database. Carts are deep-copied on the way in and
// out so callers never share line slices with the store.
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*cart.Cart
}

// NewInMemoryCartRepository creates a new InMemoryCartRepository
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{carts: make(map[uuid.UUID]*cart.Cart)}
}

// FindByUser finds the cart for a user
func (r *InMemoryCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyCart(c), nil
}

// Save creates or updates a cart
func (r *InMemoryCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.IncrementVersion()
	r.carts[c.UserID] = copyCart(c)
	return nil
}

// DeleteByUser removes the cart for a user
func (r *InMemoryCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func copyCart(c *cart.Cart) *cart.Cart {
	dup := *c
	dup.Lines = make([]cart.Line, len(c.Lines))
	copy(dup.Lines, c.Lines)
	return &dup
}
