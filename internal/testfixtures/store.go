package testfixtures

import (
	"context"
	"sync"

	"github.com/example/timeline-scheduler/internal/timeline"
)

// MemoryStore is an in-memory persistence collaborator for engine tests. It
// records snapshots per collection and supports failure injection so tests can
// exercise the engine's best-effort durability policy.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]timeline.Item
	saveCount   map[string]int
	LoadErr     error
	SaveErr     error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]timeline.Item),
		saveCount:   make(map[string]int),
	}
}

// Seed installs a snapshot without counting as a save.
func (s *MemoryStore) Seed(collection string, items []timeline.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = cloneItems(items)
}

// LoadItems returns the current snapshot for the collection.
func (s *MemoryStore) LoadItems(_ context.Context, collection string) ([]timeline.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return cloneItems(s.collections[collection]), nil
}

// SaveItems replaces the snapshot for the collection.
func (s *MemoryStore) SaveItems(_ context.Context, collection string, items []timeline.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount[collection]++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.collections[collection] = cloneItems(items)
	return nil
}

// Items returns the last saved snapshot for the collection.
func (s *MemoryStore) Items(collection string) []timeline.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.collections[collection])
}

// SaveCount reports how many times the collection was written.
func (s *MemoryStore) SaveCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount[collection]
}

func cloneItems(items []timeline.Item) []timeline.Item {
	if items == nil {
		return nil
	}
	out := make([]timeline.Item, len(items))
	copy(out, items)
	return out
}
