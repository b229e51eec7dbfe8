package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"statedeck/internal/audit/models"
	"statedeck/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in insertion order with an id index.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []models.Entry
	ids     map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ids: make(map[string]struct{})}
}

// Seed appends entries, skipping ids that are already present.
func (s *InMemoryStore) Seed(ctx context.Context, entries []models.Entry) {
	for _, e := range entries {
		_ = s.Append(ctx, e)
	}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.ids = make(map[string]struct{})
}

// Append returns sentinel.ErrConflict when the id is already stored.
func (s *InMemoryStore) Append(_ context.Context, entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[entry.ID]; ok {
		return fmt.Errorf("entry %s: %w", entry.ID, sentinel.ErrConflict)
	}
	s.ids[entry.ID] = struct{}{}
	s.entries = append(s.entries, entry)
	return nil
}

// List returns every entry, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	out := append([]models.Entry(nil), s.entries...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// ListRecent returns at most limit entries, newest first.
func (s *InMemoryStore) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
