package pricing

import (
	"context"

	"github.com/google/uuid"
)

// ShippingMethodProvider resolves the shipping policy of a selected
// shipping method. The shipping-method catalog is a collaborator; only
// the policy shape is part of this contract.
type ShippingMethodProvider interface {
	ShippingPolicy(ctx context.Context, methodID uuid.UUID) (*ShippingPolicy, error)
}

// PaymentMethodProvider resolves the commission policy of a selected
// payment method
type PaymentMethodProvider interface {
	PaymentPolicy(ctx context.Context, methodID uuid.UUID) (*PaymentPolicy, error)
}
