package repofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tentolabs/tento/quizzes"
)

var _ quizzes.Repo = (*FakeQuizRepo)(nil)

// FakeQuizRepo is an in-memory quizzes.Repo for tests and local runs.
type FakeQuizRepo struct {
	quizzes map[string]*quizzes.Quiz
	lock    sync.RWMutex
}

func NewFakeQuizRepo() *FakeQuizRepo {
	return &FakeQuizRepo{
		quizzes: make(map[string]*quizzes.Quiz),
	}
}

func (qr *FakeQuizRepo) GetByID(_ context.Context, id string) (*quizzes.Quiz, error) {
	qr.lock.RLock()
	defer qr.lock.RUnlock()

	q, ok := qr.quizzes[id]
	if !ok {
		return nil, quizzes.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (qr *FakeQuizRepo) ListByOwner(_ context.Context, ownerID string) ([]*quizzes.Quiz, error) {
	qr.lock.RLock()
	defer qr.lock.RUnlock()

	var out []*quizzes.Quiz
	for _, q := range qr.quizzes {
		if q.OwnerID == ownerID {
			copied := *q
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (qr *FakeQuizRepo) Create(_ context.Context, quiz quizzes.Quiz) (*quizzes.Quiz, error) {
	qr.lock.Lock()
	defer qr.lock.Unlock()

	if quiz.ID == "" {
		quiz.ID = uuid.New().String()
	}
	if quiz.Status == "" {
		quiz.Status = quizzes.StatusDraft
	}
	quiz.CreatedAt = time.Now()
	qr.quizzes[quiz.ID] = &quiz
	copied := quiz
	return &copied, nil
}

func (qr *FakeQuizRepo) Delete(_ context.Context, id string) error {
	qr.lock.Lock()
	defer qr.lock.Unlock()

	if _, ok := qr.quizzes[id]; !ok {
		return quizzes.ErrNotFound
	}
	delete(qr.quizzes, id)
	return nil
}
