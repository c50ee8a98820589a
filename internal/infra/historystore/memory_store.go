package historystore

import (
	"context"
	"sync"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
)

// MemoryStore keeps history in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	items []history.Item
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements history.Store. The newest item is kept at the front.
func (s *MemoryStore) Save(_ context.Context, item history.Item, limit int) error {
	key := history.Key(item.Mood)
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]history.Item, 0, len(s.items)+1)
	next = append(next, item)
	for _, existing := range s.items {
		if history.Key(existing.Mood) == key {
			continue
		}
		next = append(next, existing)
	}
	if limit > 0 && len(next) > limit {
		next = next[:limit]
	}
	s.items = next
	return nil
}

// Recent implements history.Store.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]history.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]history.Item, n)
	copy(out, s.items[:n])
	return out, nil
}

var _ history.Store = (*MemoryStore)(nil)
