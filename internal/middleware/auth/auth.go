// Package auth provides JWT issuing and verification for the admin surface.
// It is deliberately thin: one signing key, one role claim, no refresh or
// session machinery.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/response"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

const (
	// ContextUserIDKey is the gin context key holding the authenticated user ID
	ContextUserIDKey = "auth_user_id"
	// ContextRoleKey is the gin context key holding the authenticated role
	ContextRoleKey = "auth_role"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing bearer token")
)

// Claims carries the identity embedded in an issued token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the given account.
func (m *TokenManager) Issue(user *migrations.AppUser) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.ttl)

	claims := Claims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a signed token.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Middleware authenticates a bearer token and stores the identity on the
// request context.
func Middleware(manager *TokenManager) gin.HandlerFunc {
	log := logger.WithContext("component", "auth")

	return func(c *gin.Context) {
		claims, err := claimsFromRequest(manager, c)
		if err != nil {
			log.Debug("Authentication failed", "path", c.Request.URL.Path, "error", err)
			response.UnauthorizedError(c, "authentication required")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			log.Debug("Token carries a malformed subject", "subject", claims.Subject)
			response.UnauthorizedError(c, "authentication required")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireManager rejects authenticated requests whose account is not a
// manager. Must run after Middleware.
func RequireManager() gin.HandlerFunc {
	log := logger.WithContext("component", "auth")

	return func(c *gin.Context) {
		role, ok := c.Get(ContextRoleKey)
		if !ok || role != string(migrations.AppUserRoleManager) {
			log.Debug("Manager role required", "path", c.Request.URL.Path, "role", role)
			response.ForbiddenError(c, "manager role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFromRequest(manager *TokenManager, c *gin.Context) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrMissingToken
	}

	return manager.Verify(strings.TrimSpace(parts[1]))
}
