// Package auth implements the GitHub login flow and the role predicates
// evaluated over verified claims. The flow is linear with a failure exit at
// every stage: exchange the authorization code, fetch the profile, upsert
// the user, issue a token pair. No stage retries except a single attempt
// after a transport-level failure on the outbound calls.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
)

const defaultAPIBaseURL = "https://api.github.com"

// Service drives the OAuth login exchange against GitHub.
type Service struct {
	users      users.Repo
	tokens     *token.Service
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
	timeout    time.Duration
}

type ServiceOption func(*Service)

// WithEndpoint overrides the provider token endpoint (for tests). The auth
// style is pinned so the oauth2 client never probes the endpoint twice.
func WithEndpoint(endpoint oauth2.Endpoint) ServiceOption {
	return func(s *Service) {
		if endpoint.AuthStyle == oauth2.AuthStyleAutoDetect {
			endpoint.AuthStyle = oauth2.AuthStyleInParams
		}
		s.oauth.Endpoint = endpoint
	}
}

// WithAPIBaseURL overrides the profile API base URL (for tests).
func WithAPIBaseURL(baseURL string) ServiceOption {
	return func(s *Service) {
		s.apiBaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithTimeout bounds each outbound provider call.
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = timeout
	}
}

func NewService(userRepo users.Repo, tokens *token.Service, clientID, clientSecret string, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[auth.NewService] user repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[auth.NewService] token service is required")
	}

	// Pin the client-auth style: with AuthStyleAutoDetect the oauth2 client
	// probes the token endpoint with both styles, turning one Exchange into
	// two outbound calls. GitHub accepts credentials in the request body.
	endpoint := github.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	s := &Service{
		users:  userRepo,
		tokens: tokens,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
		},
		apiBaseURL: defaultAPIBaseURL,
		httpClient: http.DefaultClient,
		timeout:    10 * time.Second,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// LoginResult carries the resolved user and the issued token pair.
type LoginResult struct {
	User users.User
	Pair token.Pair
}

// githubProfile is the subset of the GitHub user endpoint this flow reads.
type githubProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Login exchanges a GitHub authorization code for an identity, resolves the
// user, and issues the initial token pair. A cancelled context aborts the
// in-flight provider call with no tokens issued.
func (s *Service) Login(ctx context.Context, code string) (*LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.Validation("code", "authorization code is required")
	}

	providerToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, providerToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Upsert(ctx, users.FromGithub(
		strconv.FormatInt(profile.ID, 10),
		profile.Login,
		profile.Email,
		profile.Name,
	))
	if err != nil {
		return nil, apperr.Repository(errors.Wrap(err, "[auth.Login] Upsert"))
	}

	pair, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("github login completed")
	return &LoginResult{User: *user, Pair: *pair}, nil
}

func (s *Service) exchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	exchange := func() (*oauth2.Token, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.oauth.Exchange(callCtx, code)
	}

	providerToken, err := exchange()
	if err != nil && retryable(ctx, err) {
		log.Warn().Err(err).Msg("github code exchange failed, retrying once")
		providerToken, err = exchange()
	}
	if err != nil {
		return nil, apperr.UpstreamOAuth(err, "github code exchange failed")
	}
	if providerToken.AccessToken == "" {
		return nil, apperr.UpstreamOAuth(nil, "github returned no access token")
	}
	return providerToken, nil
}

func (s *Service) fetchProfile(ctx context.Context, providerToken *oauth2.Token) (*githubProfile, error) {
	fetch := func() (*githubProfile, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, s.apiBaseURL+"/user", nil)
		if err != nil {
			return nil, errors.Wrap(err, "[auth.fetchProfile] NewRequest")
		}
		req.Header.Set("Authorization", "Bearer "+providerToken.AccessToken)
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &statusError{status: resp.StatusCode, body: string(body)}
		}

		var profile githubProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, errors.Wrap(err, "[auth.fetchProfile] decode")
		}
		return &profile, nil
	}

	profile, err := fetch()
	if err != nil && retryable(ctx, err) {
		log.Warn().Err(err).Msg("github profile fetch failed, retrying once")
		profile, err = fetch()
	}
	if err != nil {
		return nil, apperr.UpstreamOAuth(err, "github profile fetch failed")
	}
	if profile.Login == "" {
		return nil, apperr.UpstreamOAuth(nil, "github returned an empty profile")
	}
	return profile, nil
}

// statusError marks an application-level rejection from the provider, which
// is never retried.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("github responded %d: %s", e.status, e.body)
}

// retryable reports whether a failed provider call may be attempted once
// more: transport-level failures only, and never after the caller's context
// is done.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}
	var stErr *statusError
	return !errors.As(err, &stErr)
}
