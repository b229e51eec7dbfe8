package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
)

type VersionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestVersionStoreSuite(t *testing.T) {
	suite.Run(t, new(VersionStoreSuite))
}

func (s *VersionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.store.Seed(s.ctx, models.SampleVersions())
}

func (s *VersionStoreSuite) TestFindByID() {
	s.Run("returns saved version", func() {
		v, err := s.store.FindByID(s.ctx, "ver-002")
		s.Require().NoError(err)
		s.Equal("1.1.0", v.Version)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, "ver-404")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *VersionStoreSuite) TestSave() {
	s.Run("rejects duplicate id", func() {
		err := s.store.Save(s.ctx, models.SampleVersions()[0])
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *VersionStoreSuite) TestList() {
	s.Run("newest first", func() {
		versions, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(versions, 3)
		s.Equal("ver-003", versions[0].ID)
		s.Equal("ver-001", versions[2].ID)
	})
}
