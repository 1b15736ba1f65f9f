package users

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Role represents a user's system role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`                   // Stable internal identifier
	GithubID  string    `json:"github_id,omitempty"`  // External identity reference
	Username  string    `json:"username"`             // GitHub login
	Email     string    `json:"email"`                // Email, may be the noreply fallback
	FirstName string    `json:"first_name,omitempty"` // Split from the GitHub display name
	LastName  string    `json:"last_name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// FullName joins the display attributes, empty when neither is set.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// FromGithub builds a User from a GitHub profile. The display name splits on
// the first space; a missing public email falls back to GitHub's noreply
// address for the login.
func FromGithub(githubID, login, email, displayName string) User {
	u := User{
		GithubID: githubID,
		Username: login,
		Email:    email,
		Role:     RoleUser,
	}
	if u.Email == "" {
		u.Email = login + "@users.noreply.github.com"
	}
	if displayName != "" {
		parts := strings.SplitN(displayName, " ", 2)
		u.FirstName = parts[0]
		if len(parts) > 1 {
			u.LastName = parts[1]
		}
	}
	return u
}

// ErrNotFound is returned by repositories when no user matches.
var ErrNotFound = errors.New("user not found")

// Repo is the persistence contract for users. Upsert is keyed by GithubID
// and must be idempotent: repeated upserts with the same external identity
// resolve to the same internal ID, refreshing only display attributes.
type Repo interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByGithubID(ctx context.Context, githubID string) (*User, error)
	Upsert(ctx context.Context, user User) (*User, error)
}
