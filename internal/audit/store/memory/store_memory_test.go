package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"statedeck/internal/audit/models"
	"statedeck/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestListIsNewestFirst() {
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Append(ctx, models.Entry{ID: "b", Timestamp: base.Add(time.Hour), Type: models.EventLogin}))
	s.Require().NoError(s.store.Append(ctx, models.Entry{ID: "a", Timestamp: base, Type: models.EventLogin}))
	s.Require().NoError(s.store.Append(ctx, models.Entry{ID: "c", Timestamp: base.Add(2 * time.Hour), Type: models.EventLogout}))

	entries, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"c", "b", "a"}, ids(entries))
}

func (s *InMemoryStoreSuite) TestAppendRejectsDuplicateIDs() {
	ctx := context.Background()
	entry := models.SampleEntries()[0]
	s.Require().NoError(s.store.Append(ctx, entry))
	s.ErrorIs(s.store.Append(ctx, entry), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestSeedAndListRecent() {
	ctx := context.Background()
	s.store.Seed(ctx, models.SampleEntries())
	s.store.Seed(ctx, models.SampleEntries())

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 10)
	s.Equal("event-001", all[0].ID)

	recent, err := s.store.ListRecent(ctx, 3)
	s.Require().NoError(err)
	s.Equal([]string{"event-001", "event-002", "event-003"}, ids(recent))

	s.Run("limit larger than store", func() {
		recent, err := s.store.ListRecent(ctx, 50)
		s.Require().NoError(err)
		s.Len(recent, 10)
	})
}

func (s *InMemoryStoreSuite) TestClear() {
	ctx := context.Background()
	s.store.Seed(ctx, models.SampleEntries())
	s.store.Clear()

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Empty(all)
	s.NoError(s.store.Append(ctx, models.SampleEntries()[0]))
}

func ids(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
