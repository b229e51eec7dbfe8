package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisDiffCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDiffCache(client, ttl), mr
}

func TestRedisDiffCache(t *testing.T) {
	ctx := context.Background()
	versions := models.SampleVersions()
	from, to := versions[1], versions[2]

	t.Run("miss", func(t *testing.T) {
		c, _ := newTestCache(t, time.Minute)
		_, err := c.Get(ctx, from, to)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		c, mr := newTestCache(t, time.Minute)
		d, err := diff.Compare(from, to)
		require.NoError(t, err)

		require.NoError(t, c.Put(ctx, from, to, d))
		assert.Equal(t, time.Minute, mr.TTL(Key(from, to)))

		got, err := c.Get(ctx, from, to)
		require.NoError(t, err)
		assert.Equal(t, from.ID, got.From)
		assert.Equal(t, to.ID, got.To)
		assert.Equal(t, d.Stats(), got.Stats())
	})

	t.Run("entry expires", func(t *testing.T) {
		c, mr := newTestCache(t, time.Minute)
		d, err := diff.Compare(from, to)
		require.NoError(t, err)
		require.NoError(t, c.Put(ctx, from, to, d))

		mr.FastForward(2 * time.Minute)

		_, err = c.Get(ctx, from, to)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("non-positive ttl uses default", func(t *testing.T) {
		c, _ := newTestCache(t, 0)
		assert.Equal(t, DefaultTTL, c.ttl)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		c, mr := newTestCache(t, time.Minute)
		require.NoError(t, mr.Set(Key(from, to), "not json"))

		_, err := c.Get(ctx, from, to)
		require.Error(t, err)
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}
