package cart

import (
	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/pricing"
)

// LineResponse represents one cart line in API responses
type LineResponse struct {
	ProductID           string   `json:"product_id"`
	VariantID           string   `json:"variant_id"`
	Quantity            int      `json:"quantity"`
	UnitPrice           *float64 `json:"unit_price,omitempty"`
	DiscountedUnitPrice *float64 `json:"discounted_unit_price,omitempty"`
	AvailableStock      int      `json:"available_stock"`
	UnitWeightKg        float64  `json:"unit_weight_kg"`
}

// BreakdownResponse represents a cost breakdown in API responses
type BreakdownResponse struct {
	Subtotal          float64 `json:"subtotal"`
	ShippingCost      float64 `json:"shipping_cost"`
	PaymentCommission float64 `json:"payment_commission"`
	Total             float64 `json:"total"`
	Currency          string  `json:"currency"`
}

// CartResponse represents a cart with its derived breakdown.
// PricingIssue is set instead of Breakdown when a line has no usable
// price; checkout progression must be blocked until it is resolved.
type CartResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Lines        []LineResponse     `json:"lines"`
	Breakdown    *BreakdownResponse `json:"breakdown,omitempty"`
	PricingIssue string             `json:"pricing_issue,omitempty"`
}

// LineFailure describes one line that could not be replayed onto the
// server during reconciliation
type LineFailure struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Reason    string `json:"reason"`
}

// ReconcileResult is the outcome of a login-time cart merge. Warnings
// carry partial replay failures; they are advisory, login still succeeds.
type ReconcileResult struct {
	Cart     CartResponse  `json:"cart"`
	Warnings []LineFailure `json:"warnings,omitempty"`
}

// AddLineRequest represents a request to add a line to the cart
type AddLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateQuantityRequest represents a request to change one line's quantity
type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Magnitude int    `json:"magnitude" binding:"required,gt=0"`
	Mode      string `json:"mode" binding:"required,oneof=increment decrement set"`
}

// UpdateQuantityResult reports what a quantity mutation actually did.
// Applied is false when the request was dropped because another mutation
// for the same line was still in flight. Adjusted is true when the request
// was clamped to the advisory stock ceiling.
type UpdateQuantityResult struct {
	Applied  bool   `json:"applied"`
	Adjusted bool   `json:"adjusted"`
	Quantity int    `json:"quantity"`
	Notice   string `json:"notice,omitempty"`
}

// ToLineResponse converts a domain line to its response form
func ToLineResponse(l *cart.Line) LineResponse {
	resp := LineResponse{
		ProductID:      l.ProductID.String(),
		VariantID:      l.VariantID.String(),
		Quantity:       l.Quantity,
		AvailableStock: l.AvailableStock,
	}
	resp.UnitWeightKg, _ = l.UnitWeight.Kilograms().Float64()
	if l.UnitPrice != nil {
		v := l.UnitPrice.Float64()
		resp.UnitPrice = &v
	}
	if l.DiscountedUnitPrice != nil {
		v := l.DiscountedUnitPrice.Float64()
		resp.DiscountedUnitPrice = &v
	}
	return resp
}

// ToBreakdownResponse converts a cost breakdown to its response form
func ToBreakdownResponse(b pricing.CostBreakdown) *BreakdownResponse {
	return &BreakdownResponse{
		Subtotal:          b.Subtotal.Float64(),
		ShippingCost:      b.ShippingCost.Float64(),
		PaymentCommission: b.PaymentCommission.Float64(),
		Total:             b.Total.Float64(),
		Currency:          string(b.Total.Currency()),
	}
}

// pricingBreakdown computes a policy-free breakdown for cart views:
// subtotal only, with shipping and commission at zero until checkout
// selects concrete methods.
func pricingBreakdown(c *cart.Cart) (*pricing.CostBreakdown, error) {
	breakdown, err := pricing.Calculate(c.Lines, nil, nil)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// ToCartResponse converts a cart and its derived breakdown to response form
func ToCartResponse(c *cart.Cart, breakdown *pricing.CostBreakdown, pricingIssue string) CartResponse {
	resp := CartResponse{
		ID:           c.ID.String(),
		UserID:       c.UserID.String(),
		Lines:        make([]LineResponse, len(c.Lines)),
		PricingIssue: pricingIssue,
	}
	for i := range c.Lines {
		resp.Lines[i] = ToLineResponse(&c.Lines[i])
	}
	if breakdown != nil {
		resp.Breakdown = ToBreakdownResponse(*breakdown)
	}
	return resp
}
