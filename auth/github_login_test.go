package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tentolabs/tento/auth"
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
	"github.com/tentolabs/tento/users/repofake"
)

// fakeGithub stands in for both the token endpoint and the user API.
type fakeGithub struct {
	srv            *httptest.Server
	exchangeCalls  atomic.Int64
	profileCalls   atomic.Int64
	rejectExchange bool
	rejectProfile  bool
	profile        map[string]any
}

func newFakeGithub(t *testing.T) *fakeGithub {
	t.Helper()
	fg := &fakeGithub{
		profile: map[string]any{
			"id":    int64(4242),
			"login": "johndoe",
			"name":  "John Doe",
			"email": "john@example.com",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		fg.exchangeCalls.Add(1)
		if fg.rejectExchange {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "gh-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		fg.profileCalls.Add(1)
		if fg.rejectProfile {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fg.profile)
	})

	fg.srv = httptest.NewServer(mux)
	t.Cleanup(fg.srv.Close)
	return fg
}

func (fg *fakeGithub) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  fg.srv.URL + "/login/oauth/authorize",
		TokenURL: fg.srv.URL + "/login/oauth/access_token",
	}
}

func newLoginService(t *testing.T, fg *fakeGithub, userRepo users.Repo, extra ...auth.ServiceOption) *auth.Service {
	t.Helper()
	tokens := token.NewService(token.NewHMACSigner("test-secret"))
	options := append([]auth.ServiceOption{
		auth.WithEndpoint(fg.endpoint()),
		auth.WithAPIBaseURL(fg.srv.URL),
		auth.WithTimeout(2 * time.Second),
	}, extra...)

	svc, err := auth.NewService(userRepo, tokens, "client-id", "client-secret", options...)
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	fg := newFakeGithub(t)
	userRepo := repofake.NewFakeUserRepo()
	svc := newLoginService(t, fg, userRepo)

	result, err := svc.Login(context.Background(), "auth-code")
	require.NoError(t, err)
	require.NotEmpty(t, result.Pair.AccessToken)
	require.NotEmpty(t, result.Pair.RefreshToken)
	require.Equal(t, "johndoe", result.User.Username)
	require.Equal(t, "4242", result.User.GithubID)
	require.Equal(t, users.RoleUser, result.User.Role)

	// Exactly one call per stage; the exchange never probes the endpoint
	// a second time.
	require.EqualValues(t, 1, fg.exchangeCalls.Load())
	require.EqualValues(t, 1, fg.profileCalls.Load())
}

func TestLoginIsIdempotentPerExternalIdentity(t *testing.T) {
	fg := newFakeGithub(t)
	userRepo := repofake.NewFakeUserRepo()
	svc := newLoginService(t, fg, userRepo)

	first, err := svc.Login(context.Background(), "code-1")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "code-2")
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)

	tokens := token.NewService(token.NewHMACSigner("test-secret"))
	firstClaims, err := tokens.Verify(first.Pair.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	secondClaims, err := tokens.Verify(second.Pair.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, firstClaims.Subject, secondClaims.Subject)
}

func TestLoginEmptyCodeIsValidation(t *testing.T) {
	fg := newFakeGithub(t)
	svc := newLoginService(t, fg, repofake.NewFakeUserRepo())

	_, err := svc.Login(context.Background(), "  ")
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.EqualValues(t, 0, fg.exchangeCalls.Load())
}

func TestLoginRejectedExchangeIsNotRetried(t *testing.T) {
	fg := newFakeGithub(t)
	fg.rejectExchange = true
	svc := newLoginService(t, fg, repofake.NewFakeUserRepo())

	_, err := svc.Login(context.Background(), "bad-code")
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamOAuth))
	require.EqualValues(t, 1, fg.exchangeCalls.Load())
}

func TestLoginRejectedProfileIsNotRetried(t *testing.T) {
	fg := newFakeGithub(t)
	fg.rejectProfile = true
	svc := newLoginService(t, fg, repofake.NewFakeUserRepo())

	_, err := svc.Login(context.Background(), "auth-code")
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamOAuth))
	require.EqualValues(t, 1, fg.profileCalls.Load())
}

// flakyTransport fails the first n round trips at the transport level, then
// delegates.
type flakyTransport struct {
	failures atomic.Int64
	limit    int64
}

func (ft *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if ft.failures.Add(1) <= ft.limit {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestLoginRetriesOnceOnTransportFailure(t *testing.T) {
	fg := newFakeGithub(t)
	client := &http.Client{Transport: &flakyTransport{limit: 1}}
	svc := newLoginService(t, fg, repofake.NewFakeUserRepo(), auth.WithHTTPClient(client))

	result, err := svc.Login(context.Background(), "auth-code")
	require.NoError(t, err)
	require.NotEmpty(t, result.Pair.AccessToken)
}

func TestLoginPersistentTransportFailure(t *testing.T) {
	fg := newFakeGithub(t)
	transport := &flakyTransport{limit: 1 << 30}
	client := &http.Client{Transport: transport}
	svc := newLoginService(t, fg, repofake.NewFakeUserRepo(), auth.WithHTTPClient(client))

	_, err := svc.Login(context.Background(), "auth-code")
	require.True(t, apperr.IsKind(err, apperr.KindUpstreamOAuth))
	// One attempt plus exactly one retry; the server is never reached.
	require.EqualValues(t, 2, transport.failures.Load())
	require.EqualValues(t, 0, fg.exchangeCalls.Load())
}

type failingUserRepo struct{}

func (failingUserRepo) GetByID(context.Context, string) (*users.User, error) {
	return nil, errors.New("repo down")
}
func (failingUserRepo) GetByGithubID(context.Context, string) (*users.User, error) {
	return nil, errors.New("repo down")
}
func (failingUserRepo) Upsert(context.Context, users.User) (*users.User, error) {
	return nil, errors.New("repo down")
}

func TestLoginRepositoryFailure(t *testing.T) {
	fg := newFakeGithub(t)
	svc := newLoginService(t, fg, failingUserRepo{})

	_, err := svc.Login(context.Background(), "auth-code")
	require.True(t, apperr.IsKind(err, apperr.KindRepository))
	require.Equal(t, "internal error", apperr.Message(err))
}
