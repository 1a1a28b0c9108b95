package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clynova/cantabria-cart/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// SessionClaims are the JWT claims of a storefront session. A guest session
// carries a generated user ID so the anonymous cart has a stable key; the
// backend swaps it for a real one at login.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Guest  bool   `json:"guest,omitempty"`
}

// GetUserUUID extracts and parses the user ID from claims
func (c *SessionClaims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// SessionService issues and validates session tokens
type SessionService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewSessionService creates a new session service
func NewSessionService(cfg config.JWTConfig) *SessionService {
	return &SessionService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken issues a session token for an authenticated user
func (s *SessionService) GenerateToken(userID uuid.UUID) (string, time.Time, error) {
	return s.generate(userID, false)
}

// GenerateGuestToken issues a session token with a fresh user ID so an
// anonymous visitor can hold a cart before logging in
func (s *SessionService) GenerateGuestToken() (string, time.Time, error) {
	return s.generate(uuid.New(), true)
}

func (s *SessionService) generate(userID uuid.UUID, guest bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
		Guest:  guest,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a session token and returns its claims
func (s *SessionService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// Expiration returns the configured session lifetime
func (s *SessionService) Expiration() time.Duration {
	return s.expiration
}
