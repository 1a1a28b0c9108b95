package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcart "github.com/clynova/cantabria-cart/internal/application/cart"
	"github.com/clynova/cantabria-cart/internal/infrastructure/auth"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/middleware"
)

// SessionHandler issues storefront session tokens. Credential checks are
// owned by the identity backend; this service receives the verified user
// ID and swaps the guest session for an authenticated one.
type SessionHandler struct {
	BaseHandler
	sessions    *auth.SessionService
	cartService *appcart.CartService
	syncService *appcart.SyncService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(
	sessions *auth.SessionService,
	cartService *appcart.CartService,
	syncService *appcart.SyncService,
) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		cartService: cartService,
		syncService: syncService,
	}
}

// LoginRequest carries the identity-verified user taking over the session
type LoginRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// SessionResponse carries an issued session token
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Guest     bool      `json:"guest"`
}

// LoginResponse carries the new session plus the reconciled cart
type LoginResponse struct {
	Session SessionResponse          `json:"session"`
	Cart    *appcart.ReconcileResult `json:"cart,omitempty"`
}

// Guest issues an anonymous session so a visitor can hold a cart before
// logging in
func (h *SessionHandler) Guest(c *gin.Context) {
	token, expiresAt, err := h.sessions.GenerateGuestToken()
	if err != nil {
		h.InternalError(c, "Failed to issue session")
		return
	}
	h.Created(c, SessionResponse{Token: token, ExpiresAt: expiresAt, Guest: true})
}

// Login upgrades the session to an authenticated one. The guest cart, if
// any, is adopted by the user, then the local cart is reconciled with the
// server-held one. Reconciliation problems never fail the login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	ctx := c.Request.Context()
	if middleware.IsGuestSession(c) {
		if guestID := middleware.GetSessionUserID(c); guestID != uuid.Nil {
			if err := h.cartService.AdoptCart(ctx, guestID, userID); err != nil {
				h.HandleError(c, err)
				return
			}
		}
	}

	token, expiresAt, err := h.sessions.GenerateToken(userID)
	if err != nil {
		h.InternalError(c, "Failed to issue session")
		return
	}

	resp := LoginResponse{
		Session: SessionResponse{Token: token, ExpiresAt: expiresAt},
	}
	if result, err := h.syncService.Reconcile(ctx, userID); err == nil {
		resp.Cart = result
	}

	h.Success(c, resp)
}

// RegisterRoutes registers all session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/session")
	{
		sessions.POST("/guest", h.Guest)
		sessions.POST("/login", h.Login)
	}
}
