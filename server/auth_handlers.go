package server

import (
	"encoding/json"
	"net/http"

	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
)

// AuthResponse is the body returned by the OAuth callback: the token pair
// plus the resolved user, so clients need no follow-up request.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	FullName     string `json:"full_name,omitempty"`
}

// GithubCallbackHandler completes the GitHub authorization-code flow and
// issues the initial token pair.
func (s *Server) GithubCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, apperr.Validation("code", "code query parameter is required"))
			return
		}

		result, err := s.login.Login(r.Context(), code)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token:        result.Pair.AccessToken,
			RefreshToken: result.Pair.RefreshToken,
			ID:           result.User.ID,
			Username:     result.User.Username,
			Email:        result.User.Email,
			Role:         string(result.User.Role),
			FullName:     result.User.FullName(),
		})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshHandler rotates a refresh token: the presented token is invalidated
// and a new pair is returned.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.Validation("refresh_token", "request body must be JSON with a refresh_token field"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, apperr.Validation("refresh_token", "refresh_token is required"))
			return
		}

		pair, err := s.tokens.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler revokes the presented refresh token. Revoking an
// already-rotated token still succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.Validation("refresh_token", "request body must be JSON with a refresh_token field"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, apperr.Validation("refresh_token", "refresh_token is required"))
			return
		}

		if err := s.tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func userResponse(u *users.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"role":      u.Role,
		"full_name": u.FullName(),
	}
}

func claimsFrom(r *http.Request) *token.Claims {
	return token.ClaimsFromContext(r.Context())
}
