package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/clynova/cantabria-cart/internal/application/checkout"
)

// CheckoutHandler handles checkout related HTTP requests
type CheckoutHandler struct {
	BaseHandler
	checkoutService *appcheckout.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *appcheckout.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Quote prices the session's cart against the selected shipping and
// payment methods
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	var req appcheckout.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Complete finalizes an order: the local cart and its server-held copy
// are both cleared
func (h *CheckoutHandler) Complete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	if err := h.checkoutService.CompleteOrder(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout")
	{
		checkout.POST("/quote", h.Quote)
		checkout.POST("/complete", h.Complete)
	}
}
