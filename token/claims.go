package token

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tentolabs/tento/users"
)

// Type distinguishes the two halves of a token pair. Verification always
// checks the declared type against the expected one; an access token is
// never accepted where a refresh token is required, and vice versa.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims is the verified payload of a token.
type Claims struct {
	TokenType Type       `json:"token_type"`
	Role      users.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Pair holds an access token and a refresh token produced together. The two
// share a subject but carry distinct jti and token type. The JSON field
// names match the wire response of the refresh and callback endpoints.
type Pair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type contextKey struct{}

// NewContext returns ctx with the verified claims attached.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the auth middleware, or
// nil when the request carried no valid access token.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(contextKey{}).(*Claims)
	return claims
}
