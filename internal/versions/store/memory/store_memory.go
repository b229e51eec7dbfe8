package memory

import (
	"context"
	"fmt"
	"sync"

	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
)

// InMemoryStore keeps versions in a map. Used in development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	versions map[string]models.StateVersion
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{versions: make(map[string]models.StateVersion)}
}

// Seed saves every version, ignoring duplicates.
func (s *InMemoryStore) Seed(ctx context.Context, versions []models.StateVersion) {
	for _, v := range versions {
		_ = s.Save(ctx, v)
	}
}

func (s *InMemoryStore) Save(_ context.Context, v models.StateVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[v.ID]; ok {
		return fmt.Errorf("version %s: %w", v.ID, sentinel.ErrConflict)
	}
	s.versions[v.ID] = v
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.StateVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// List returns every version, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]models.StateVersion, error) {
	s.mu.RLock()
	all := make([]models.StateVersion, 0, len(s.versions))
	for _, v := range s.versions {
		all = append(all, v)
	}
	s.mu.RUnlock()
	return models.SortByCreatedDesc(all), nil
}
