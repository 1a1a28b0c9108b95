package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// CartActivityHandler writes a structured audit trail of cart lifecycle
// events. It is the storefront's answer to "when did this user's cart get
// merged, and why is it empty now".
type CartActivityHandler struct {
	logger *zap.Logger
}

// NewCartActivityHandler creates a cart activity handler
func NewCartActivityHandler(logger *zap.Logger) *CartActivityHandler {
	return &CartActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler listens to
func (h *CartActivityHandler) EventTypes() []string {
	return []string{
		cart.EventTypeCartCleared,
		cart.EventTypeCartReconciled,
	}
}

// Handle logs one cart lifecycle event
func (h *CartActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("cart_id", event.AggregateID().String()),
		zap.String("user_id", event.UserID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *cart.CartClearedEvent:
		fields = append(fields, zap.String("reason", e.Reason))
		h.logger.Info("cart cleared", fields...)
	case *cart.CartReconciledEvent:
		fields = append(fields,
			zap.Int("line_count", e.LineCount),
			zap.Int("failed_lines", e.FailedLines),
		)
		h.logger.Info("cart reconciled", fields...)
	default:
		h.logger.Info("cart event", append(fields, zap.String("event_type", event.EventType()))...)
	}
	return nil
}

var _ shared.EventHandler = (*CartActivityHandler)(nil)
