package adapter

import (
	"context"
	"time"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// TokenClaims represents the verified claims of an identity token.
type TokenClaims struct {
	Principal entity.Principal
	ExpiresAt time.Time
}

// TokenService verifies identity tokens issued by the identity provider.
type TokenService interface {
	// ValidateAccessToken validates a bearer token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)

	// GenerateAccessToken signs a token for principal. Used by tooling and tests.
	GenerateAccessToken(ctx context.Context, principal entity.Principal, ttl time.Duration) (string, error)
}
