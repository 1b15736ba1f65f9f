package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/token"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// RequireAuth validates the bearer access token and attaches its claims to
// the request context. Requests without a valid access token never reach
// the handler. Business authorization stays in the handlers.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeError(w, err)
			return
		}

		claims, err := s.tokens.Verify(raw, token.TypeAccess)
		if err != nil {
			writeError(w, err)
			return
		}

		next(w, r.WithContext(token.NewContext(r.Context(), claims)))
	}
}

// OptionalAuth attaches claims when a valid access token is present and
// passes the request through otherwise. Used by the GraphQL endpoint, whose
// resolvers surface Unauthorized as a GraphQL error instead of a 401.
func (s *Server) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			next(w, r)
			return
		}
		claims, err := s.tokens.Verify(raw, token.TypeAccess)
		if err != nil {
			next(w, r)
			return
		}
		next(w, r.WithContext(token.NewContext(r.Context(), claims)))
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperr.Unauthorized("Authorization header must use the Bearer scheme")
	}
	if parts[1] == "" {
		return "", apperr.Unauthorized("empty bearer token")
	}
	return parts[1], nil
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		}
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeError(w, apperr.Internal(nil))
			}
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}

		allowed := false
		for _, o := range s.config.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}
