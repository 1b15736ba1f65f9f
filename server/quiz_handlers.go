package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/tentolabs/tento/auth"
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/quizzes"
)

// ListQuizzesHandler lists the quizzes owned by the caller.
func (s *Server) ListQuizzesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)

		list, err := s.quizzes.ListByOwner(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, apperr.Repository(err))
			return
		}
		if list == nil {
			list = []*quizzes.Quiz{}
		}

		writeJSON(w, http.StatusOK, list)
	}
}

type createQuizRequest struct {
	Title string `json:"title" validate:"required"`
}

// CreateQuizHandler creates a draft quiz owned by the caller.
func (s *Server) CreateQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)

		var req createQuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.Validation("title", "request body must be JSON with a title field"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, apperr.Validation("title", "title is required"))
			return
		}

		quiz, err := s.quizzes.Create(r.Context(), quizzes.Quiz{
			OwnerID: claims.Subject,
			Title:   req.Title,
		})
		if err != nil {
			writeError(w, apperr.Repository(err))
			return
		}

		writeJSON(w, http.StatusCreated, quiz)
	}
}

// GetQuizHandler returns a quiz by id, for the owner or an admin.
func (s *Server) GetQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := s.ownedQuiz(r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quiz)
	}
}

// DeleteQuizHandler removes a quiz, for the owner or an admin.
func (s *Server) DeleteQuizHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := s.ownedQuiz(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := s.quizzes.Delete(r.Context(), quiz.ID); err != nil {
			writeError(w, apperr.Repository(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ownedQuiz(r *http.Request) (*quizzes.Quiz, error) {
	quiz, err := s.quizzes.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, quizzes.ErrNotFound) {
		return nil, apperr.NotFound("quiz not found")
	}
	if err != nil {
		return nil, apperr.Repository(err)
	}
	if err := auth.RequireOwnerOrAdmin(claimsFrom(r), quiz.OwnerID); err != nil {
		return nil, err
	}
	return quiz, nil
}
