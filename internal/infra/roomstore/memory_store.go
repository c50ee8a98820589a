package roomstore

import (
	"context"
	"sync"
	"time"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/room"
)

// MemoryStore keeps room codes in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]time.Time
	now   func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]time.Time), now: time.Now}
}

// Create implements room.Store.
func (s *MemoryStore) Create(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.rooms[id]; ok && !s.expired(exp) {
		return false, nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.rooms[id] = exp
	return true, nil
}

// Exists implements room.Store.
func (s *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.rooms[id]
	if !ok {
		return false, nil
	}
	if s.expired(exp) {
		delete(s.rooms, id)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) expired(exp time.Time) bool {
	return !exp.IsZero() && !exp.After(s.now())
}

var _ room.Store = (*MemoryStore)(nil)
