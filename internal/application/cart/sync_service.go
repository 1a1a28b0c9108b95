package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// ErrReconcileInProgress is returned when a reconciliation for the same
// user is already running. Callers should wait for it to finish rather
// than starting another.
var ErrReconcileInProgress = shared.NewDomainError("RECONCILIATION_IN_PROGRESS", "A cart reconciliation is already running for this user")

// ReconcileGuard serializes reconciliation runs per user. Begin returns
// false when a run is already active; End releases the slot.
type ReconcileGuard interface {
	Begin(ctx context.Context, userID uuid.UUID) (bool, error)
	End(ctx context.Context, userID uuid.UUID) error
}

// SyncService merges the session-local cart with the server-side cart at
// login and writes the merged result back to both sides.
type SyncService struct {
	cartRepo  cart.Repository
	remote    cart.RemoteCartGateway
	snapshots cart.SnapshotProvider
	guard     ReconcileGuard
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	cartRepo cart.Repository,
	remote cart.RemoteCartGateway,
	snapshots cart.SnapshotProvider,
	guard ReconcileGuard,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		cartRepo:  cartRepo,
		remote:    remote,
		snapshots: snapshots,
		guard:     guard,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SyncService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Reconcile merges the local cart with the server cart for a freshly
// authenticated user. Overlapping lines keep the larger of the two
// quantities, never the sum, so running the merge twice yields the same
// cart. The merged cart then replaces the server cart line by line; lines
// that fail to replay are collected as warnings instead of failing the
// whole operation. When the server cannot be reached at all the server
// cart is treated as empty and the local cart wins.
func (s *SyncService) Reconcile(ctx context.Context, userID uuid.UUID) (*ReconcileResult, error) {
	ok, err := s.guard.Begin(ctx, userID)
	if err != nil {
		// A broken guard must not block login; fall through unguarded.
		s.logger.Warn("Reconcile guard unavailable, proceeding without it",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	} else if !ok {
		return nil, ErrReconcileInProgress
	} else {
		defer func() {
			if err := s.guard.End(ctx, userID); err != nil {
				s.logger.Warn("Failed to release reconcile guard",
					zap.String("user_id", userID.String()),
					zap.Error(err))
			}
		}()
	}

	local, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	server := s.fetchServerCart(ctx, userID)
	merged := cart.Merge(local, server)
	merged.UserID = userID
	if err := s.cartRepo.Save(ctx, merged); err != nil {
		return nil, err
	}

	warnings := s.replay(ctx, userID, merged)

	merged.AddDomainEvent(cart.NewCartReconciledEvent(merged, len(warnings)))
	s.publishEvents(ctx, merged)

	s.logger.Info("Cart reconciled",
		zap.String("user_id", userID.String()),
		zap.Int("lines", merged.LineCount()),
		zap.Int("replay_failures", len(warnings)))

	breakdown := s.breakdownOrIssue(merged)
	result := &ReconcileResult{Cart: breakdown, Warnings: warnings}
	return result, nil
}

// fetchServerCart loads the server cart and enriches its lines with
// catalog snapshots. Any failure degrades to an empty server cart.
func (s *SyncService) fetchServerCart(ctx context.Context, userID uuid.UUID) *cart.Cart {
	remoteLines, err := s.remote.FetchCart(ctx, userID)
	if err != nil {
		s.logger.Warn("Server cart unreachable, reconciling against empty cart",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}

	server := cart.NewCart(userID, cart.OriginServer)
	for _, rl := range remoteLines {
		if rl.Quantity < 1 {
			continue
		}
		snap, err := s.snapshots.VariantSnapshot(ctx, rl.ProductID, rl.VariantID)
		if err != nil {
			// Keep the line; pricing flags the missing snapshot later.
			s.logger.Warn("No catalog snapshot for server cart line",
				zap.String("product_id", rl.ProductID.String()),
				zap.String("variant_id", rl.VariantID.String()),
				zap.Error(err))
			snap = &cart.VariantSnapshot{Stock: rl.Quantity}
		}
		line, err := cart.NewLine(server.ID, rl.ProductID, rl.VariantID, rl.Quantity, *snap)
		if err != nil {
			s.logger.Warn("Skipping invalid server cart line",
				zap.String("product_id", rl.ProductID.String()),
				zap.Error(err))
			continue
		}
		server.UpsertLine(*line)
	}
	return server
}

// replay clears the server cart and re-adds every merged line. Failures
// are collected per line; a failed line stays in the local cart.
func (s *SyncService) replay(ctx context.Context, userID uuid.UUID, merged *cart.Cart) []LineFailure {
	var warnings []LineFailure
	if err := s.remote.Clear(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear server cart before replay",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		warnings = append(warnings, LineFailure{Reason: "server cart could not be cleared before replay"})
	}
	for i := range merged.Lines {
		line := &merged.Lines[i]
		remoteLine := cart.RemoteLine{ProductID: line.ProductID, VariantID: line.VariantID, Quantity: line.Quantity}
		if err := s.remote.AddLine(ctx, userID, remoteLine); err != nil {
			s.logger.Warn("Failed to replay cart line to server",
				zap.String("user_id", userID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.String("variant_id", line.VariantID.String()),
				zap.Error(err))
			warnings = append(warnings, LineFailure{
				ProductID: line.ProductID.String(),
				VariantID: line.VariantID.String(),
				Reason:    err.Error(),
			})
		}
	}
	return warnings
}

func (s *SyncService) breakdownOrIssue(c *cart.Cart) CartResponse {
	breakdown, err := pricingBreakdown(c)
	if err != nil {
		return ToCartResponse(c, nil, "a cart line has no usable price")
	}
	return ToCartResponse(c, breakdown, "")
}

func (s *SyncService) publishEvents(ctx context.Context, c *cart.Cart) {
	if s.publisher == nil {
		return
	}
	for _, event := range c.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish cart event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	c.ClearDomainEvents()
}
