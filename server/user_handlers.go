package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/tentolabs/tento/auth"
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/users"
)

// MeHandler returns the user behind the verified access token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)

		user, err := s.users.GetByID(r.Context(), claims.Subject)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, apperr.NotFound("user not found"))
			return
		}
		if err != nil {
			writeError(w, apperr.Repository(err))
			return
		}

		writeJSON(w, http.StatusOK, userResponse(user))
	}
}

// GetUserHandler returns a user by id, for the owner or an admin.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := auth.RequireOwnerOrAdmin(claimsFrom(r), id); err != nil {
			writeError(w, err)
			return
		}

		user, err := s.users.GetByID(r.Context(), id)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, apperr.NotFound("user not found"))
			return
		}
		if err != nil {
			writeError(w, apperr.Repository(err))
			return
		}

		writeJSON(w, http.StatusOK, userResponse(user))
	}
}
