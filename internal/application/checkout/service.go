package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/pricing"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart")

// CheckoutService quotes cart totals against selected shipping and
// payment methods, and finalizes carts once an order is placed.
type CheckoutService struct {
	cartRepo        cart.Repository
	remote          cart.RemoteCartGateway
	shippingMethods pricing.ShippingMethodProvider
	paymentMethods  pricing.PaymentMethodProvider
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	cartRepo cart.Repository,
	remote cart.RemoteCartGateway,
	shippingMethods pricing.ShippingMethodProvider,
	paymentMethods pricing.PaymentMethodProvider,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:        cartRepo,
		remote:          remote,
		shippingMethods: shippingMethods,
		paymentMethods:  paymentMethods,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Quote computes the full cost breakdown for the user's cart under the
// selected shipping and payment methods. Method selections are optional;
// an omitted method contributes zero to the total. A line without a
// usable price fails the quote outright: checkout must not proceed on a
// cart that cannot be priced.
func (s *CheckoutService) Quote(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var shippingPolicy *pricing.ShippingPolicy
	if req.ShippingMethodID != "" {
		methodID, err := uuid.Parse(req.ShippingMethodID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "invalid shipping method id")
		}
		shippingPolicy, err = s.shippingMethods.ShippingPolicy(ctx, methodID)
		if err != nil {
			return nil, err
		}
	}

	var paymentPolicy *pricing.PaymentPolicy
	if req.PaymentMethodID != "" {
		methodID, err := uuid.Parse(req.PaymentMethodID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "invalid payment method id")
		}
		paymentPolicy, err = s.paymentMethods.PaymentPolicy(ctx, methodID)
		if err != nil {
			return nil, err
		}
	}

	breakdown, err := pricing.Calculate(c.Lines, shippingPolicy, paymentPolicy)
	if err != nil {
		if errors.Is(err, shared.ErrPricingInputMissing) {
			s.logger.Warn("Quote blocked by unpriced cart line",
				zap.String("user_id", userID.String()))
		}
		return nil, err
	}

	resp := ToQuoteResponse(c, breakdown)
	return &resp, nil
}

// CompleteOrder finalizes the cart after an order has been created from
// it: the local cart is cleared and the server cart is emptied. A failed
// server clear is logged, not surfaced; the next reconciliation converges
// the two sides.
func (s *CheckoutService) CompleteOrder(ctx context.Context, userID uuid.UUID) error {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if c.IsEmpty() {
		return nil
	}

	c.Clear("order_completed")
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return err
	}
	if s.remote != nil {
		if err := s.remote.Clear(ctx, userID); err != nil {
			s.logger.Warn("Failed to clear server cart after order completion",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	s.publishEvents(ctx, c)
	return nil
}

func (s *CheckoutService) publishEvents(ctx context.Context, c *cart.Cart) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, c.GetDomainEvents()...); err != nil {
		s.logger.Error("Failed to publish checkout events", zap.Error(err))
	}
	c.ClearDomainEvents()
}
