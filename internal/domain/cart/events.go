package cart

import (
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// Event types for the cart aggregate
const (
	EventTypeCartCleared    = "cart.cleared"
	EventTypeCartReconciled = "cart.reconciled"
)

// AggregateTypeCart is the aggregate type tag used in events
const AggregateTypeCart = "Cart"

// CartClearedEvent is published when a cart is emptied, typically right
// after an order is created from it
type CartClearedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewCartClearedEvent creates a new CartClearedEvent
func NewCartClearedEvent(c *Cart, reason string) *CartClearedEvent {
	return &CartClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, c.ID, c.UserID),
		Reason:          reason,
	}
}

// CartReconciledEvent is published after a login-time merge completes
type CartReconciledEvent struct {
	shared.BaseDomainEvent
	LineCount   int `json:"line_count"`
	FailedLines int `json:"failed_lines"`
}

// NewCartReconciledEvent creates a new CartReconciledEvent
func NewCartReconciledEvent(c *Cart, failedLines int) *CartReconciledEvent {
	return &CartReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartReconciled, AggregateTypeCart, c.ID, c.UserID),
		LineCount:       len(c.Lines),
		FailedLines:     failedLines,
	}
}
