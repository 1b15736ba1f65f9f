package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tentolabs/tento/users"
	"github.com/tentolabs/tento/users/repofake"
)

func TestFromGithub(t *testing.T) {
	u := users.FromGithub("12345", "johndoe", "john@example.com", "John Doe")
	require.Equal(t, "12345", u.GithubID)
	require.Equal(t, "johndoe", u.Username)
	require.Equal(t, "john@example.com", u.Email)
	require.Equal(t, "John", u.FirstName)
	require.Equal(t, "Doe", u.LastName)
	require.Equal(t, "John Doe", u.FullName())
	require.Equal(t, users.RoleUser, u.Role)
}

func TestFromGithubEmailFallback(t *testing.T) {
	u := users.FromGithub("12345", "johndoe", "", "")
	require.Equal(t, "johndoe@users.noreply.github.com", u.Email)
	require.Empty(t, u.FullName())
}

func TestFromGithubSingleWordName(t *testing.T) {
	u := users.FromGithub("12345", "cher", "cher@example.com", "Cher")
	require.Equal(t, "Cher", u.FirstName)
	require.Empty(t, u.LastName)
}

func TestRolePredicates(t *testing.T) {
	require.True(t, users.RoleAdmin.IsAdmin())
	require.False(t, users.RoleUser.IsAdmin())
	require.False(t, users.RoleOwner.IsAdmin())

	require.True(t, users.RoleUser.Valid())
	require.False(t, users.Role("superuser").Valid())
}

func TestFakeRepoUpsertIsIdempotent(t *testing.T) {
	repo := repofake.NewFakeUserRepo()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, users.FromGithub("42", "johndoe", "john@example.com", "John Doe"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// Same external identity, refreshed display attributes.
	second, err := repo.Upsert(ctx, users.FromGithub("42", "johndoe", "john@new.example.com", "Johnny Doe"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "john@new.example.com", second.Email)
	require.Equal(t, "Johnny", second.FirstName)
	require.Equal(t, first.CreatedAt, second.CreatedAt)

	byGithub, err := repo.GetByGithubID(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, first.ID, byGithub.ID)
}

func TestFakeRepoNotFound(t *testing.T) {
	repo := repofake.NewFakeUserRepo()
	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, users.ErrNotFound)
}
