package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// CartService handles cart read and line membership operations
type CartService struct {
	cartRepo  cart.Repository
	snapshots cart.SnapshotProvider
	remote    cart.RemoteCartGateway
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.Repository,
	snapshots cart.SnapshotProvider,
	remote cart.RemoteCartGateway,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		snapshots: snapshots,
		remote:    remote,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// GetCart returns the user's cart with its cost breakdown recomputed from
// the current lines. A missing cart is returned as an empty one. When a
// line lacks a usable price the breakdown is omitted and PricingIssue is
// set; the cart itself remains readable.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponseWithBreakdown(c)
	return &resp, nil
}

// AddLine adds a product variant to the cart, enriching the line with a
// fresh catalog snapshot. Adding a variant already in the cart raises its
// quantity instead of creating a duplicate line. The requested quantity is
// clamped to the advisory stock ceiling.
func (s *CartService) AddLine(ctx context.Context, userID uuid.UUID, req AddLineRequest) (*UpdateQuantityResult, *CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "invalid product id")
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "invalid variant id")
	}
	if req.Quantity < 1 {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "quantity must be at least 1")
	}

	snap, err := s.snapshots.VariantSnapshot(ctx, productID, variantID)
	if err != nil {
		return nil, nil, err
	}
	if snap.Stock < 1 {
		return nil, nil, shared.ErrStaleStock
	}

	c, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	key := cart.LineKey{ProductID: productID, VariantID: variantID}
	target := req.Quantity
	if existing := c.FindLine(key); existing != nil {
		target = existing.Quantity + req.Quantity
	}
	adjusted := false
	if target > snap.Stock {
		target = snap.Stock
		adjusted = true
	}

	line, err := cart.NewLine(c.ID, productID, variantID, target, *snap)
	if err != nil {
		return nil, nil, err
	}
	c.UpsertLine(*line)
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, nil, err
	}
	s.pushAdd(ctx, userID, key, target)

	result := &UpdateQuantityResult{Applied: true, Adjusted: adjusted, Quantity: target}
	if adjusted {
		result.Notice = "quantity adjusted to available stock"
	}
	resp := s.toResponseWithBreakdown(c)
	return result, &resp, nil
}

// RemoveLine removes a product variant from the cart
func (s *CartService) RemoveLine(ctx context.Context, userID, productID, variantID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := cart.LineKey{ProductID: productID, VariantID: variantID}
	if err := c.RemoveLine(key); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if s.remote != nil {
		if err := s.remote.RemoveLine(ctx, userID, key); err != nil {
			s.logger.Warn("Failed to remove cart line on server",
				zap.String("user_id", userID.String()),
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}
	resp := s.toResponseWithBreakdown(c)
	return &resp, nil
}

// ClearCart removes every line from the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID, reason string) error {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	c.Clear(reason)
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return err
	}
	if s.remote != nil {
		if err := s.remote.Clear(ctx, userID); err != nil {
			s.logger.Warn("Failed to clear cart on server",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	s.publishEvents(ctx, c)
	return nil
}

// AdoptCart moves a guest session's cart to the authenticated user at
// login. When the user already has a local cart the two are merged line
// by line, keeping the higher quantity on overlap. A guest without a cart
// is a no-op.
func (s *CartService) AdoptCart(ctx context.Context, guestID, userID uuid.UUID) error {
	guestCart, err := s.cartRepo.FindByUser(ctx, guestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	userCart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	adopted := guestCart
	if userCart != nil {
		adopted = cart.Merge(userCart, guestCart)
	}
	adopted.UserID = userID

	if err := s.cartRepo.Save(ctx, adopted); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteByUser(ctx, guestID); err != nil {
		s.logger.Warn("Failed to drop guest cart after adoption",
			zap.String("guest_id", guestID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *CartService) loadOrEmpty(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.NewCart(userID, cart.OriginLocal), nil
		}
		return nil, err
	}
	return c, nil
}

// pushAdd mirrors a local line addition to the server. Failures are
// logged, not surfaced: the local cart stays authoritative for the
// session and reconciliation repairs the divergence later.
func (s *CartService) pushAdd(ctx context.Context, userID uuid.UUID, key cart.LineKey, quantity int) {
	if s.remote == nil {
		return
	}
	remoteLine := cart.RemoteLine{ProductID: key.ProductID, VariantID: key.VariantID, Quantity: quantity}
	if err := s.remote.AddLine(ctx, userID, remoteLine); err != nil {
		s.logger.Warn("Failed to push cart line to server",
			zap.String("user_id", userID.String()),
			zap.String("product_id", key.ProductID.String()),
			zap.String("variant_id", key.VariantID.String()),
			zap.Error(err))
	}
}

func (s *CartService) toResponseWithBreakdown(c *cart.Cart) CartResponse {
	breakdown, err := pricingBreakdown(c)
	if err != nil {
		if errors.Is(err, shared.ErrPricingInputMissing) {
			return ToCartResponse(c, nil, "a cart line has no usable price")
		}
		s.logger.Error("Failed to compute cart breakdown", zap.Error(err))
		return ToCartResponse(c, nil, "cart totals are temporarily unavailable")
	}
	return ToCartResponse(c, breakdown, "")
}

func (s *CartService) publishEvents(ctx context.Context, c *cart.Cart) {
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
