package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulsefeed/backend/internal/types"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, validator)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing authorization header"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("is_verified", claims.IsVerified)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the viewer when a valid token is
// present but lets anonymous requests through.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c, validator); ok {
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("is_verified", claims.IsVerified)
		}
		c.Next()
	}
}

func claimsFromHeader(c *gin.Context, validator TokenValidator) (*types.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// CurrentUserID returns the authenticated user's ID from the context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// Viewer returns a pointer to the authenticated user's ID, or nil for
// anonymous requests.
func Viewer(c *gin.Context) *uuid.UUID {
	if id, ok := CurrentUserID(c); ok {
		return &id
	}
	return nil
}
