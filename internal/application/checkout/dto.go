package checkout

import (
	appcart "github.com/clynova/cantabria-cart/internal/application/cart"
	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/pricing"
)

// QuoteRequest selects the shipping and payment methods to price the
// cart against. Either may be omitted while the shopper is still choosing.
type QuoteRequest struct {
	ShippingMethodID string `json:"shipping_method_id" binding:"omitempty,uuid"`
	PaymentMethodID  string `json:"payment_method_id" binding:"omitempty,uuid"`
}

// QuoteResponse is a priced view of the cart under the selected methods
type QuoteResponse struct {
	Lines     []appcart.LineResponse    `json:"lines"`
	Breakdown appcart.BreakdownResponse `json:"breakdown"`
}

// ToQuoteResponse converts a cart and its breakdown to response form
func ToQuoteResponse(c *cart.Cart, breakdown pricing.CostBreakdown) QuoteResponse {
	lines := make([]appcart.LineResponse, len(c.Lines))
	for i := range c.Lines {
		lines[i] = appcart.ToLineResponse(&c.Lines[i])
	}
	return QuoteResponse{
		Lines:     lines,
		Breakdown: *appcart.ToBreakdownResponse(breakdown),
	}
}
