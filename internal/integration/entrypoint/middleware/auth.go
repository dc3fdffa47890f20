// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// PrincipalKey is the context key for the verified caller identity.
	PrincipalKey ContextKey = "principal"
)

// AuthMiddleware provides JWT authentication middleware.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate returns a Gin middleware handler that enforces JWT authentication.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required", domainerror.ErrCodeMissingToken)
			return
		}

		// Check Bearer prefix
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header format", domainerror.ErrCodeInvalidToken)
			return
		}

		// Extract token
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			abortUnauthorized(c, "Token is required", domainerror.ErrCodeMissingToken)
			return
		}

		// Validate token
		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			code := domainerror.ErrCodeInvalidToken
			if domainerror.CodeOf(err) == string(domainerror.ErrCodeExpiredToken) {
				code = domainerror.ErrCodeExpiredToken
			}
			abortUnauthorized(c, "Invalid or expired token", code)
			return
		}

		// Store caller identity in context
		c.Set(string(PrincipalKey), claims.Principal)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string, code domainerror.AuthErrorCode) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
}

// GetPrincipal extracts the verified caller from the Gin context.
func GetPrincipal(c *gin.Context) (entity.Principal, bool) {
	value, exists := c.Get(string(PrincipalKey))
	if !exists {
		return entity.Principal{}, false
	}
	principal, ok := value.(entity.Principal)
	if !ok || principal.UserID == "" {
		return entity.Principal{}, false
	}
	return principal, true
}

// GetUserID extracts the caller's user id from the Gin context.
func GetUserID(c *gin.Context) (string, bool) {
	principal, ok := GetPrincipal(c)
	if !ok {
		return "", false
	}
	return principal.UserID, true
}
