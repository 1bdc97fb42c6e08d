package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
)

type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.RefreshSession
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process. Used when Redis is disabled.
func NewMemorySessionRepository() SessionRepository {
	return &memoryRepository{
		sessions: make(map[string]domain.RefreshSession),
		now:      time.Now,
	}
}

func (r *memoryRepository) Save(_ context.Context, session *domain.RefreshSession) error {
	if !session.ExpiresAt.After(r.now()) {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	if !session.ExpiresAt.After(r.now()) {
		delete(r.sessions, id)
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}

	delete(r.sessions, id)
	return nil
}
