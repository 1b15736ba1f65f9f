package quizzes

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Status tracks a quiz through its generation lifecycle.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReady    Status = "ready"
	StatusComplete Status = "complete"
)

// AvailableForTaking reports whether a quiz can be attempted.
func (s Status) AvailableForTaking() bool {
	return s == StatusReady || s == StatusComplete
}

type Quiz struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ErrNotFound is returned by repositories when no quiz matches.
var ErrNotFound = errors.New("quiz not found")

// Repo is the persistence contract for quizzes.
type Repo interface {
	GetByID(ctx context.Context, id string) (*Quiz, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Quiz, error)
	Create(ctx context.Context, quiz Quiz) (*Quiz, error)
	Delete(ctx context.Context, id string) error
}
