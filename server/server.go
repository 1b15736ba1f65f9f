package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tentolabs/tento/auth"
	gqlapi "github.com/tentolabs/tento/graphql"
	"github.com/tentolabs/tento/internal/config"
	"github.com/tentolabs/tento/quizzes"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
)

// Server wires the REST and GraphQL surfaces over the auth core. All shared
// state is constructed once here and passed by reference; handlers never
// reach for globals.
type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	tokens   *token.Service
	login    *auth.Service
	users    users.Repo
	quizzes  quizzes.Repo
	validate *validator.Validate
	graphql  *gqlapi.Handler
}

func New(cfg config.Config, tokens *token.Service, login *auth.Service, userRepo users.Repo, quizRepo quizzes.Repo) (*Server, error) {
	if tokens == nil {
		return nil, errors.New("[server.New] token service is required")
	}
	if login == nil {
		return nil, errors.New("[server.New] login service is required")
	}
	if userRepo == nil {
		return nil, errors.New("[server.New] user repo is required")
	}
	if quizRepo == nil {
		return nil, errors.New("[server.New] quiz repo is required")
	}

	schema, err := gqlapi.NewSchema(userRepo, quizRepo)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] build graphql schema")
	}

	s := &Server{
		env:      cfg.Env,
		mux:      http.NewServeMux(),
		config:   cfg,
		tokens:   tokens,
		login:    login,
		users:    userRepo,
		quizzes:  quizRepo,
		validate: validator.New(),
		graphql:  gqlapi.NewHandler(schema),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}
