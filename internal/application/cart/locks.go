package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
)

// MaxDebounce caps how long a line stays locked after a mutation
// completes. Holding the lock briefly coalesces rapid repeated taps on
// the same line into a single applied mutation.
const MaxDebounce = 300 * time.Millisecond

type lockKey struct {
	UserID uuid.UUID
	Line   cart.LineKey
}

// lineLockTable tracks which cart lines have a mutation in flight.
// Acquisition is non-blocking: a second mutation for a locked line is
// rejected, never queued.
type lineLockTable struct {
	mu      sync.Mutex
	pending map[lockKey]struct{}
}

func newLineLockTable() *lineLockTable {
	return &lineLockTable{pending: make(map[lockKey]struct{})}
}

// tryAcquire marks the line as having a mutation in flight. It returns
// false without blocking when the line is already locked.
func (t *lineLockTable) tryAcquire(userID uuid.UUID, line cart.LineKey) bool {
	key := lockKey{UserID: userID, Line: line}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, held := t.pending[key]; held {
		return false
	}
	t.pending[key] = struct{}{}
	return true
}

// release frees the line after the given debounce window. A zero delay
// releases immediately; delays above MaxDebounce are capped.
func (t *lineLockTable) release(userID uuid.UUID, line cart.LineKey, after time.Duration) {
	key := lockKey{UserID: userID, Line: line}
	free := func() {
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
	}
	if after <= 0 {
		free()
		return
	}
	if after > MaxDebounce {
		after = MaxDebounce
	}
	time.AfterFunc(after, free)
}
