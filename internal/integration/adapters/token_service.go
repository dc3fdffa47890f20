// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// CustomClaims represents the claims the identity provider puts in its tokens.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// tokenService implements the adapter.TokenService interface.
type tokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new token service verifying HS256 tokens signed with secret.
// An empty issuer accepts tokens from any issuer.
func NewTokenService(secret, issuer string, clock adapter.Clock) adapter.TokenService {
	now := time.Now
	if clock != nil {
		now = clock.Now
	}
	return &tokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    now,
	}
}

// ValidateAccessToken validates a bearer token and returns the caller principal.
func (s *tokenService) ValidateAccessToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	claims, err := s.parseJWT(token)
	if err != nil {
		return nil, err
	}

	// The subject is the fallback for providers that omit user_id
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "token has no subject", domainerror.ErrInvalidToken)
	}

	out := &adapter.TokenClaims{
		Principal: entity.Principal{
			UserID: userID,
			Name:   claims.Name,
			Email:  claims.Email,
			Phone:  claims.Phone,
		},
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// GenerateAccessToken signs a token for principal valid for ttl.
func (s *tokenService) GenerateAccessToken(ctx context.Context, principal entity.Principal, ttl time.Duration) (string, error) {
	if principal.UserID == "" {
		return "", domainerror.MissingCaller()
	}

	now := s.now().UTC()
	claims := CustomClaims{
		UserID: principal.UserID,
		Name:   principal.Name,
		Email:  principal.Email,
		Phone:  principal.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   principal.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseJWT parses and validates a JWT token.
func (s *tokenService) parseJWT(tokenString string) (*CustomClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerror.NewAuthError(domainerror.ErrCodeExpiredToken, "token has expired", domainerror.ErrExpiredToken)
		}
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "invalid token", fmt.Errorf("%w: %v", domainerror.ErrInvalidToken, err))
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "invalid token claims", domainerror.ErrInvalidToken)
	}

	return claims, nil
}
