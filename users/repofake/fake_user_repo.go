package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tentolabs/tento/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo used in tests and as the default
// store while persistence stays an external collaborator.
type FakeUserRepo struct {
	users     map[string]*users.User
	githubIds map[string]string // github id -> user id
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:     make(map[string]*users.User),
		githubIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (ur *FakeUserRepo) GetByGithubID(_ context.Context, githubID string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.githubIds[githubID]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *ur.users[id]
	return &copied, nil
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.githubIds[user.GithubID]; ok {
		existing := ur.users[id]
		existing.Username = user.Username
		existing.Email = user.Email
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		copied := *existing
		return &copied, nil
	}

	user.ID = uuid.New().String()
	if user.Role == "" {
		user.Role = users.RoleUser
	}
	user.CreatedAt = time.Now()
	ur.users[user.ID] = &user
	ur.githubIds[user.GithubID] = user.ID
	copied := user
	return &copied, nil
}
