package graphql_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	gql "github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"github.com/tentolabs/tento/graphql"
	"github.com/tentolabs/tento/internal/apperr"
	"github.com/tentolabs/tento/quizzes"
	quizfake "github.com/tentolabs/tento/quizzes/repofake"
	"github.com/tentolabs/tento/token"
	"github.com/tentolabs/tento/users"
	userfake "github.com/tentolabs/tento/users/repofake"
)

type fixture struct {
	schema   gql.Schema
	userRepo *userfake.FakeUserRepo
	quizRepo *quizfake.FakeQuizRepo
	user     *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userRepo := userfake.NewFakeUserRepo()
	quizRepo := quizfake.NewFakeQuizRepo()

	user, err := userRepo.Upsert(context.Background(), users.FromGithub("42", "johndoe", "john@example.com", "John Doe"))
	require.NoError(t, err)

	schema, err := graphql.NewSchema(userRepo, quizRepo)
	require.NoError(t, err)

	return &fixture{schema: schema, userRepo: userRepo, quizRepo: quizRepo, user: user}
}

func (f *fixture) ctxFor(subject string, role users.Role) context.Context {
	return token.NewContext(context.Background(), &token.Claims{
		TokenType:        token.TypeAccess,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	})
}

func (f *fixture) do(ctx context.Context, query string) *gql.Result {
	return gql.Do(gql.Params{Schema: f.schema, RequestString: query, Context: ctx})
}

func TestMeQuery(t *testing.T) {
	f := newFixture(t)

	result := f.do(f.ctxFor(f.user.ID, users.RoleUser), `{ me { id username email fullName } }`)
	require.False(t, result.HasErrors(), "%v", result.Errors)

	me := result.Data.(map[string]interface{})["me"].(map[string]interface{})
	require.Equal(t, f.user.ID, me["id"])
	require.Equal(t, "johndoe", me["username"])
	require.Equal(t, "John Doe", me["fullName"])
}

func TestMeWithoutClaimsIsUnauthorized(t *testing.T) {
	f := newFixture(t)

	result := f.do(context.Background(), `{ me { id } }`)
	require.True(t, result.HasErrors())
	require.Equal(t, "Unauthorized", result.Errors[0].Extensions["code"])
	require.Equal(t, "authentication required", result.Errors[0].Message)
}

func TestUserQueryForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)

	result := f.do(f.ctxFor("someone-else", users.RoleUser), `{ user(id: "`+f.user.ID+`") { id } }`)
	require.True(t, result.HasErrors())
	require.Equal(t, "Forbidden", result.Errors[0].Extensions["code"])
}

func TestUserQueryAllowedForAdmin(t *testing.T) {
	f := newFixture(t)

	result := f.do(f.ctxFor("admin-id", users.RoleAdmin), `{ user(id: "`+f.user.ID+`") { username } }`)
	require.False(t, result.HasErrors(), "%v", result.Errors)
}

func TestQuizNotFound(t *testing.T) {
	f := newFixture(t)

	result := f.do(f.ctxFor(f.user.ID, users.RoleUser), `{ quiz(id: "missing") { id } }`)
	require.True(t, result.HasErrors())
	require.Equal(t, "NotFound", result.Errors[0].Extensions["code"])
}

func TestCreateAndListQuizzes(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctxFor(f.user.ID, users.RoleUser)

	result := f.do(ctx, `mutation { createQuiz(title: "Go basics") { id title status } }`)
	require.False(t, result.HasErrors(), "%v", result.Errors)
	created := result.Data.(map[string]interface{})["createQuiz"].(map[string]interface{})
	require.Equal(t, "Go basics", created["title"])
	require.Equal(t, string(quizzes.StatusDraft), created["status"])

	result = f.do(ctx, `{ quizzes { id title } }`)
	require.False(t, result.HasErrors(), "%v", result.Errors)
	list := result.Data.(map[string]interface{})["quizzes"].([]interface{})
	require.Len(t, list, 1)
}

func TestDeleteQuizOwnership(t *testing.T) {
	f := newFixture(t)

	quiz, err := f.quizRepo.Create(context.Background(), quizzes.Quiz{OwnerID: f.user.ID, Title: "Mine"})
	require.NoError(t, err)

	result := f.do(f.ctxFor("intruder", users.RoleUser), `mutation { deleteQuiz(id: "`+quiz.ID+`") }`)
	require.True(t, result.HasErrors())
	require.Equal(t, "Forbidden", result.Errors[0].Extensions["code"])

	result = f.do(f.ctxFor(f.user.ID, users.RoleUser), `mutation { deleteQuiz(id: "`+quiz.ID+`") }`)
	require.False(t, result.HasErrors(), "%v", result.Errors)
}

// The GraphQL extensions code and the REST code string must come from the
// same mapping for every taxonomy kind a resolver can produce.
func TestGraphQLCodesMatchRESTCodes(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		ctx      context.Context
		query    string
		wantCode string
	}{
		{"unauthorized", context.Background(), `{ me { id } }`, apperr.Code(apperr.Unauthorized(""))},
		{"forbidden", f.ctxFor("other", users.RoleUser), `{ user(id: "` + f.user.ID + `") { id } }`, apperr.Code(apperr.Forbidden(""))},
		{"not found", f.ctxFor(f.user.ID, users.RoleUser), `{ quiz(id: "nope") { id } }`, apperr.Code(apperr.NotFound(""))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := f.do(tc.ctx, tc.query)
			require.True(t, result.HasErrors())
			require.Equal(t, tc.wantCode, result.Errors[0].Extensions["code"])
		})
	}
}
