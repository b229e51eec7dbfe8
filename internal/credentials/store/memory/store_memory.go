package memory

import (
	"context"
	"sort"
	"sync"

	"statedeck/internal/credentials/models"
)

// InMemoryStore holds the credentials reported by the issuing system.
type InMemoryStore struct {
	mu     sync.RWMutex
	keys   []models.APIKey
	tokens []models.JWTToken
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Seed replaces the stored credentials.
func (s *InMemoryStore) Seed(keys []models.APIKey, tokens []models.JWTToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append([]models.APIKey(nil), keys...)
	s.tokens = append([]models.JWTToken(nil), tokens...)
}

// ListAPIKeys returns keys, newest first.
func (s *InMemoryStore) ListAPIKeys(_ context.Context) ([]models.APIKey, error) {
	s.mu.RLock()
	out := append([]models.APIKey(nil), s.keys...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListJWTTokens returns tokens, newest first.
func (s *InMemoryStore) ListJWTTokens(_ context.Context) ([]models.JWTToken, error) {
	s.mu.RLock()
	out := append([]models.JWTToken(nil), s.tokens...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}
