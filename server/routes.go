package server

import "net/http"

const (
	RouteAuthCallback = "/auth/github/callback"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"
	RouteMe           = "/me"
	RouteUser         = "/users/{id}"
	RouteQuizzes      = "/quizzes"
	RouteQuiz         = "/quizzes/{id}"
	RouteGraphQL      = "/graphql"
)

func (s *Server) initRoutes() {
	// Public auth surface
	s.RegisterRouteFunc("GET "+RouteAuthCallback, ChainMiddleware(s.GithubCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Protected REST surface
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteQuizzes, ChainMiddleware(s.ListQuizzesHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteQuizzes, ChainMiddleware(s.CreateQuizHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteQuiz, ChainMiddleware(s.GetQuizHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("DELETE "+RouteQuiz, ChainMiddleware(s.DeleteQuizHandler(), s.ProtectedMiddleware()...))

	// GraphQL carries claims when present; resolvers enforce identity.
	s.RegisterRouteFunc("POST "+RouteGraphQL, ChainMiddleware(s.graphql.ServeHTTP, append(s.APIMiddleware(), s.OptionalAuth)...))
}

func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.CorsMiddleware,
	}
}

func (s *Server) ProtectedMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return append(s.APIMiddleware(), s.RequireAuth)
}
