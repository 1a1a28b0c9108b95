package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clynova/cantabria-cart/internal/domain/pricing"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
)

// ShippingMethodClient resolves shipping policies from the shipping-method
// catalog. It implements pricing.ShippingMethodProvider.
type ShippingMethodClient struct {
	*client
}

// NewShippingMethodClient creates a shipping-method client
func NewShippingMethodClient(baseURL string, timeout time.Duration) (*ShippingMethodClient, error) {
	c, err := newClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &ShippingMethodClient{client: c}, nil
}

type shippingMethodResponse struct {
	BaseCost              string  `json:"base_cost"`
	ExtraCostPerKg        *string `json:"extra_cost_per_kg"`
	FreeShippingThreshold *string `json:"free_shipping_threshold"`
	Currency              string  `json:"currency"`
}

// ShippingPolicy resolves the policy of a selected shipping method
func (c *ShippingMethodClient) ShippingPolicy(ctx context.Context, methodID uuid.UUID) (*pricing.ShippingPolicy, error) {
	var resp shippingMethodResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/shipping-methods/"+methodID.String(), nil, &resp); err != nil {
		return nil, err
	}

	currency := valueobject.Currency(resp.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	baseCost, err := valueobject.NewMoneyFromString(resp.BaseCost, currency)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid base cost for shipping method %s: %w", methodID, err)
	}
	policy := &pricing.ShippingPolicy{BaseCost: baseCost}

	if resp.ExtraCostPerKg != nil {
		extra, err := valueobject.NewMoneyFromString(*resp.ExtraCostPerKg, currency)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid extra cost for shipping method %s: %w", methodID, err)
		}
		policy.ExtraCostPerKg = &extra
	}
	if resp.FreeShippingThreshold != nil {
		threshold, err := valueobject.NewMoneyFromString(*resp.FreeShippingThreshold, currency)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid free shipping threshold for shipping method %s: %w", methodID, err)
		}
		policy.FreeShippingThreshold = &threshold
	}

	return policy, nil
}

// PaymentMethodClient resolves commission policies from the payment-method
// catalog. It implements pricing.PaymentMethodProvider.
type PaymentMethodClient struct {
	*client
}

// NewPaymentMethodClient creates a payment-method client
func NewPaymentMethodClient(baseURL string, timeout time.Duration) (*PaymentMethodClient, error) {
	c, err := newClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &PaymentMethodClient{client: c}, nil
}

type paymentMethodResponse struct {
	CommissionPercentage *string `json:"commission_percentage"`
}

// PaymentPolicy resolves the policy of a selected payment method
func (c *PaymentMethodClient) PaymentPolicy(ctx context.Context, methodID uuid.UUID) (*pricing.PaymentPolicy, error) {
	var resp paymentMethodResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/payment-methods/"+methodID.String(), nil, &resp); err != nil {
		return nil, err
	}

	policy := &pricing.PaymentPolicy{}
	if resp.CommissionPercentage != nil {
		pct, err := decimal.NewFromString(*resp.CommissionPercentage)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid commission for payment method %s: %w", methodID, err)
		}
		policy.CommissionPercentage = &pct
	}
	return policy, nil
}
