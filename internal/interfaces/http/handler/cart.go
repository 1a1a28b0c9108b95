package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcart "github.com/clynova/cantabria-cart/internal/application/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/middleware"
)

// CartHandler handles cart related HTTP requests
type CartHandler struct {
	BaseHandler
	cartService     *appcart.CartService
	quantityService *appcart.QuantityService
	syncService     *appcart.SyncService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(
	cartService *appcart.CartService,
	quantityService *appcart.QuantityService,
	syncService *appcart.SyncService,
) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		quantityService: quantityService,
		syncService:     syncService,
	}
}

// AddLineResponse bundles the mutation outcome with the refreshed cart
type AddLineResponse struct {
	Result appcart.UpdateQuantityResult `json:"result"`
	Cart   appcart.CartResponse         `json:"cart"`
}

// GetCart returns the session's cart with its derived cost breakdown
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	resp, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddLine adds a variant to the session's cart
func (h *CartHandler) AddLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	var req appcart.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, cartResp, err := h.cartService.AddLine(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AddLineResponse{Result: *result, Cart: *cartResp})
}

// UpdateQuantity applies a quantity mutation to one cart line. A request
// arriving while a previous mutation for the same line is still pending is
// dropped without an error; the response reports Applied=false.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	var req appcart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.quantityService.UpdateQuantity(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, shared.ErrMutationInFlight) {
			h.Success(c, appcart.UpdateQuantityResult{
				Applied: false,
				Notice:  "A previous update for this line is still in progress",
			})
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RemoveLine removes one line from the session's cart
func (h *CartHandler) RemoveLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := uuid.Parse(c.Param("variantID"))
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	resp, err := h.cartService.RemoveLine(c.Request.Context(), userID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearCart empties the session's cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), userID, "user_requested"); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reconcile merges the local cart with the server-held one. Guests have no
// server cart to merge against, so a guest session is rejected.
func (h *CartHandler) Reconcile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session required")
		return
	}
	if middleware.IsGuestSession(c) {
		h.Unauthorized(c, "Reconciliation requires an authenticated session")
		return
	}

	result, err := h.syncService.Reconcile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carts := rg.Group("/cart")
	{
		carts.GET("", h.GetCart)
		carts.DELETE("", h.ClearCart)
		carts.POST("/items", h.AddLine)
		carts.PATCH("/items/quantity", h.UpdateQuantity)
		carts.DELETE("/items/:productID/:variantID", h.RemoveLine)
		carts.POST("/reconcile", h.Reconcile)
	}
}
