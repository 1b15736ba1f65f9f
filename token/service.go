// Package token issues, verifies, and rotates the JWT pairs that protect the
// API. Issue and Verify are pure computations over the signer; the only
// shared state is the rotation store consulted by Refresh.
package token

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/users"
)

type Service struct {
	signer        Signer
	rotations     RotationStore
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type ServiceOption func(*Service)

func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessExpiry = accessExpiry
		s.refreshExpiry = refreshExpiry
	}
}

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func WithRotationStore(store RotationStore) ServiceOption {
	return func(s *Service) {
		s.rotations = store
	}
}

func NewService(signer Signer, options ...ServiceOption) *Service {
	s := &Service{
		signer:    signer,
		rotations: NewInMemoryRotationStore(),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.accessExpiry == 0 {
		s.accessExpiry = 24 * time.Hour
	}
	if s.refreshExpiry == 0 {
		s.refreshExpiry = 168 * time.Hour
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

// Issue signs a fresh token pair for subject. Both tokens share the subject
// and role but carry distinct jtis and token types.
func (s *Service) Issue(subject string, role users.Role) (*Pair, error) {
	access, err := s.sign(subject, role, TypeAccess, s.accessExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.sign(subject, role, TypeRefresh, s.refreshExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(subject string, role users.Role, typ Type, expiry time.Duration) (string, error) {
	now := s.nowFunc()
	return s.signer.Sign(&Claims{
		TokenType: typ,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	})
}

// Verify parses raw and checks signature, structure, lifetime, and declared
// token type. Any failure is Unauthorized. The accepted algorithm is fixed
// by the signer, never read from the token.
func (s *Service) Verify(raw string, expected Type) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, s.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{s.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(s.nowFunc),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, apperr.UnauthorizedWrap(err, "invalid or expired token")
	}
	if !parsed.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	if claims.TokenType != expected {
		return nil, apperr.Unauthorized("unexpected token type")
	}
	return claims, nil
}

// Refresh rotates a refresh token: the presented token is verified, marked
// as used, and a brand-new pair is issued for the same subject. A token
// refreshed once can never be refreshed again, even though its signature
// stays valid until natural expiry.
func (s *Service) Refresh(ctx context.Context, raw string) (*Pair, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.Validation("refresh_token", "refresh_token is required")
	}

	claims, err := s.Verify(raw, TypeRefresh)
	if err != nil {
		return nil, err
	}

	fresh, err := s.rotations.MarkRotated(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return nil, apperr.Repository(err)
	}
	if !fresh {
		return nil, apperr.Unauthorized("refresh token has already been used")
	}

	return s.Issue(claims.Subject, claims.Role)
}

// Revoke invalidates a refresh token without issuing a replacement, used on
// logout. Revoking an already-rotated token is not an error.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.Validation("refresh_token", "refresh_token is required")
	}

	claims, err := s.Verify(raw, TypeRefresh)
	if err != nil {
		return err
	}

	if _, err := s.rotations.MarkRotated(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Repository(err)
	}
	return nil
}
