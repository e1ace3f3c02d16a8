package session

import (
	"context"
	"sync"

	"bizdir/pkg/types"
)

// MemoryStore keeps sessions in process memory. Suitable for development
// and tests; production uses the Postgres-backed store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]types.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]types.Session{}}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	copied := sess
	copied.Roles = append([]string(nil), sess.Roles...)
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	copied.Roles = append([]string(nil), sess.Roles...)
	s.sessions[sess.ID] = copied
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
