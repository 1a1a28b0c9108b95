package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// QuantityService applies quantity mutations to individual cart lines.
// Each line admits at most one in-flight mutation; a second request for
// the same line while one is pending is dropped, not queued, so rapid
// repeated taps collapse into a single applied change.
type QuantityService struct {
	cartRepo  cart.Repository
	snapshots cart.SnapshotProvider
	remote    cart.RemoteCartGateway
	locks     *lineLockTable
	debounce  time.Duration
	logger    *zap.Logger
}

// NewQuantityService creates a new QuantityService. The debounce window
// keeps a line locked briefly after a mutation lands; it is capped at
// MaxDebounce.
func NewQuantityService(
	cartRepo cart.Repository,
	snapshots cart.SnapshotProvider,
	remote cart.RemoteCartGateway,
	debounce time.Duration,
	logger *zap.Logger,
) *QuantityService {
	if debounce < 0 || debounce > MaxDebounce {
		debounce = MaxDebounce
	}
	return &QuantityService{
		cartRepo:  cartRepo,
		snapshots: snapshots,
		remote:    remote,
		locks:     newLineLockTable(),
		debounce:  debounce,
		logger:    logger,
	}
}

// UpdateQuantity applies one quantity mutation. Set mode is absolute: the
// magnitude replaces the current quantity outright. The resulting quantity
// is clamped to [1, availableStock]; a clamp is reported via Adjusted
// rather than failing the request. A request for a line with a mutation
// already in flight returns shared.ErrMutationInFlight.
func (s *QuantityService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req UpdateQuantityRequest) (*UpdateQuantityResult, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid product id")
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid variant id")
	}
	mode := cart.QuantityMode(req.Mode)
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown quantity mode")
	}

	key := cart.LineKey{ProductID: productID, VariantID: variantID}
	if !s.locks.tryAcquire(userID, key) {
		s.logger.Debug("Dropped quantity mutation with one already in flight",
			zap.String("user_id", userID.String()),
			zap.String("product_id", productID.String()),
			zap.String("variant_id", variantID.String()))
		return nil, shared.ErrMutationInFlight
	}
	defer s.locks.release(userID, key, s.debounce)

	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	line := c.FindLine(key)
	if line == nil {
		return nil, shared.ErrNotFound
	}

	// Refresh the advisory stock ceiling so the clamp uses current data.
	if snap, err := s.snapshots.VariantSnapshot(ctx, productID, variantID); err == nil {
		line.RefreshSnapshot(*snap)
	} else {
		s.logger.Warn("Using cached stock for quantity clamp",
			zap.String("variant_id", variantID.String()),
			zap.Error(err))
	}

	target, err := line.TargetQuantity(mode, req.Magnitude)
	if err != nil {
		return nil, err
	}
	quantity, adjusted, err := line.ClampToStock(target)
	if err != nil {
		return nil, err
	}
	if err := c.SetLineQuantity(key, quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	// The server receives the clamped absolute quantity so a retry or
	// duplicate delivery converges on the same state.
	if s.remote != nil {
		if err := s.remote.UpdateQuantity(ctx, userID, key, quantity, cart.QuantitySet); err != nil {
			s.logger.Warn("Failed to push quantity change to server",
				zap.String("user_id", userID.String()),
				zap.String("variant_id", variantID.String()),
				zap.Int("quantity", quantity),
				zap.Error(err))
		}
	}

	result := &UpdateQuantityResult{Applied: true, Adjusted: adjusted, Quantity: quantity}
	if adjusted {
		result.Notice = "quantity adjusted to available stock"
	}
	return result, nil
}
