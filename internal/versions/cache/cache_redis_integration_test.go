//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"statedeck/internal/versions/cache"
	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
	"statedeck/pkg/testutil/containers"
)

type RedisDiffCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisDiffCache
}

func TestRedisDiffCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisDiffCacheSuite))
}

func (s *RedisDiffCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedisDiffCache(s.redis.Client, time.Minute)
}

func (s *RedisDiffCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisDiffCacheSuite) TestMissReturnsNotFound() {
	versions := models.SampleVersions()
	_, err := s.cache.Get(context.Background(), versions[0], versions[1])
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisDiffCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	versions := models.SampleVersions()
	d, err := diff.Compare(versions[0], versions[2])
	s.Require().NoError(err)

	s.Require().NoError(s.cache.Put(ctx, versions[0], versions[2], d))

	got, err := s.cache.Get(ctx, versions[0], versions[2])
	s.Require().NoError(err)
	s.Equal(versions[0].ID, got.From)
	s.Equal(versions[2].ID, got.To)
	s.Equal(d.Stats(), got.Stats())

	ttl, err := s.redis.Client.TTL(ctx, cache.Key(versions[0], versions[2])).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}
