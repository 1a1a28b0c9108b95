// Package pricing holds the single order-pricing engine. Every surface
// that shows a total (cart page, shipping step, payment step, quotation
// summary) computes it through Calculate; no caller derives subtotal,
// shipping or commission on its own.
package pricing

import (
	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ShippingPolicy describes one selected shipping method
type ShippingPolicy struct {
	BaseCost              valueobject.Money
	ExtraCostPerKg        *valueobject.Money
	FreeShippingThreshold *valueobject.Money
}

// PaymentPolicy describes one selected payment method
type PaymentPolicy struct {
	// CommissionPercentage (0-100) is applied on subtotal + shipping
	CommissionPercentage *decimal.Decimal
}

// CostBreakdown is the derived cost of a cart. It is never persisted;
// it is recomputed on demand from the cart lines and the two policies.
type CostBreakdown struct {
	Subtotal          valueobject.Money `json:"subtotal"`
	ShippingCost      valueobject.Money `json:"shipping_cost"`
	PaymentCommission valueobject.Money `json:"payment_commission"`
	Total             valueobject.Money `json:"total"`
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Calculate derives the cost breakdown for a set of cart lines under the
// given shipping and payment policies. Either policy may be nil when the
// corresponding checkout step has not been reached yet.
//
// The computation is pure: identical inputs always yield an identical
// breakdown, and calling it has no side effects.
func Calculate(lines []cart.Line, shipping *ShippingPolicy, payment *PaymentPolicy) (CostBreakdown, error) {
	subtotal := valueobject.ZeroCLP()
	weightKg := decimal.Zero

	for i := range lines {
		lineTotal, err := lines[i].LineTotal()
		if err != nil {
			return CostBreakdown{}, err
		}
		if lineTotal.IsNegative() {
			return CostBreakdown{}, shared.NewDomainError("INVALID_PRICE", "Line price cannot be negative")
		}
		subtotal, err = subtotal.Add(lineTotal)
		if err != nil {
			return CostBreakdown{}, err
		}
		weightKg = weightKg.Add(lines[i].TotalWeight().Kilograms())
	}

	shippingCost, err := computeShipping(subtotal, weightKg, len(lines), shipping)
	if err != nil {
		return CostBreakdown{}, err
	}

	commission, err := computeCommission(subtotal, shippingCost, payment)
	if err != nil {
		return CostBreakdown{}, err
	}

	total, err := subtotal.Add(shippingCost)
	if err != nil {
		return CostBreakdown{}, err
	}
	total, err = total.Add(commission)
	if err != nil {
		return CostBreakdown{}, err
	}

	return CostBreakdown{
		Subtotal:          subtotal,
		ShippingCost:      shippingCost,
		PaymentCommission: commission,
		Total:             total,
	}, nil
}

// computeShipping applies the shipping policy:
//   - no policy yet (still on the cart step): free
//   - subtotal at or above the free-shipping threshold: free
//   - per-kg surcharge beyond the first kilogram when the policy carries a
//     rate; the first kilogram is included in the base cost
//   - otherwise the flat base cost
func computeShipping(subtotal valueobject.Money, weightKg decimal.Decimal, lineCount int, policy *ShippingPolicy) (valueobject.Money, error) {
	if policy == nil {
		return valueobject.ZeroCLP(), nil
	}
	if policy.BaseCost.IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_SHIPPING_POLICY", "Base cost cannot be negative")
	}

	if policy.FreeShippingThreshold != nil {
		if lineCount == 0 {
			return valueobject.ZeroCLP(), nil
		}
		reached, err := subtotal.GreaterThanOrEqual(*policy.FreeShippingThreshold)
		if err != nil {
			return valueobject.Money{}, err
		}
		if reached {
			return valueobject.ZeroCLP(), nil
		}
	}

	cost := policy.BaseCost
	if policy.ExtraCostPerKg != nil {
		excess := weightKg.Sub(one)
		if excess.IsPositive() {
			surcharge := policy.ExtraCostPerKg.Multiply(excess)
			var err error
			cost, err = cost.Add(surcharge)
			if err != nil {
				return valueobject.Money{}, err
			}
		}
	}
	return cost, nil
}

// computeCommission applies the payment method's commission percentage on
// subtotal + shipping
func computeCommission(subtotal, shipping valueobject.Money, policy *PaymentPolicy) (valueobject.Money, error) {
	if policy == nil || policy.CommissionPercentage == nil {
		return valueobject.ZeroCLP(), nil
	}
	pct := *policy.CommissionPercentage
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return valueobject.Money{}, shared.NewDomainError("INVALID_COMMISSION", "Commission percentage must be between 0 and 100")
	}
	base, err := subtotal.Add(shipping)
	if err != nil {
		return valueobject.Money{}, err
	}
	return base.CalculatePercentage(pct), nil
}
