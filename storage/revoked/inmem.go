// Package revoked stores the ids of signed-out sessions.
package revoked

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/masomo-portal/core"
)

var nowFunc = time.Now // mockable

// InMemStore keeps revoked session ids in memory. Used when no redis is configured.
type InMemStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

var _ core.RevocationStore = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{expires: make(map[string]time.Time)}
}

func (s *InMemStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowFunc()
	for id, exp := range s.expires { // drop expired entries while we hold the lock
		if now.After(exp) {
			delete(s.expires, id)
		}
	}
	s.expires[sessionID] = now.Add(ttl)
	return nil
}

func (s *InMemStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.expires[sessionID]
	return ok && !nowFunc().After(exp), nil
}
