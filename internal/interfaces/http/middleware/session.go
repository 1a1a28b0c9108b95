package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clynova/cantabria-cart/internal/infrastructure/auth"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/dto"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	SessionUserIDKey = "session_user_id"
	SessionGuestKey  = "session_guest"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// SessionMiddlewareConfig holds configuration for session middleware
type SessionMiddlewareConfig struct {
	Sessions *auth.SessionService
	// SkipPaths are paths that don't require a session
	SkipPaths []string
}

// DefaultSessionConfig returns default session middleware configuration
func DefaultSessionConfig(sessions *auth.SessionService) SessionMiddlewareConfig {
	return SessionMiddlewareConfig{
		Sessions: sessions,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
			"/api/v1/session/guest",
		},
	}
}

// SessionAuthMiddleware creates session authentication middleware
func SessionAuthMiddleware(sessions *auth.SessionService) gin.HandlerFunc {
	return SessionAuthMiddlewareWithConfig(DefaultSessionConfig(sessions))
}

// SessionAuthMiddlewareWithConfig creates session middleware with custom config
func SessionAuthMiddlewareWithConfig(cfg SessionMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := cfg.Sessions.ValidateToken(tokenString)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			abortUnauthorized(c, code, "Session validation failed")
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(SessionUserIDKey, claims.UserID)
		c.Set(SessionGuestKey, claims.Guest)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetSessionUserID returns the session's user ID, or uuid.Nil without one
func GetSessionUserID(c *gin.Context) uuid.UUID {
	raw := c.GetString(SessionUserIDKey)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// IsGuestSession reports whether the current session is anonymous
func IsGuestSession(c *gin.Context) bool {
	return c.GetBool(SessionGuestKey)
}
