package auth

import (
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/token"
)

// Authorization checks are pure predicates over verified claims. They are
// evaluated by handlers and resolvers, never by the middleware.

// RequireAdmin fails with Forbidden unless the claims carry the admin role.
func RequireAdmin(claims *token.Claims) error {
	if claims == nil {
		return apperr.Unauthorized("authentication required")
	}
	if !claims.Role.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

// RequireOwnerOrAdmin fails with Forbidden unless the claims belong to the
// resource owner or carry the admin role.
func RequireOwnerOrAdmin(claims *token.Claims, ownerID string) error {
	if claims == nil {
		return apperr.Unauthorized("authentication required")
	}
	if claims.Role.IsAdmin() || claims.Subject == ownerID {
		return nil
	}
	return apperr.Forbidden("you can only access your own resources")
}

// RequireClaims fails with Unauthorized when no verified claims are present.
func RequireClaims(claims *token.Claims) error {
	if claims == nil {
		return apperr.Unauthorized("authentication required")
	}
	return nil
}
