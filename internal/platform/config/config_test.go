package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("STATEDECK_ENV", "")
		t.Setenv("KAFKA_BROKERS", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.True(t, cfg.IsDevelopment())
		assert.True(t, cfg.SeedSampleData)
		assert.Equal(t, time.UTC, cfg.Timeline.Location)
		assert.Equal(t, 20, cfg.Timeline.PageSize)
		assert.Equal(t, 10*time.Minute, cfg.Redis.DiffCacheTTL)
		assert.False(t, cfg.Kafka.Enabled())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("STATEDECK_ENV", "production")
		t.Setenv("STATEDECK_TIMELINE_TZ", "Europe/Berlin")
		t.Setenv("STATEDECK_PAGE_SIZE", "50")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.False(t, cfg.SeedSampleData)
		assert.Equal(t, "Europe/Berlin", cfg.Timeline.Location.String())
		assert.Equal(t, 50, cfg.Timeline.PageSize)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.True(t, cfg.Kafka.Enabled())
	})

	t.Run("invalid timezone", func(t *testing.T) {
		t.Setenv("STATEDECK_TIMELINE_TZ", "Mars/Olympus")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STATEDECK_TIMELINE_TZ")
	})

	t.Run("non-positive page size", func(t *testing.T) {
		t.Setenv("STATEDECK_PAGE_SIZE", "0")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STATEDECK_PAGE_SIZE")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("STATEDECK_DIFF_CACHE_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STATEDECK_DIFF_CACHE_TTL")
	})
}
