package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statedeck/internal/audit/models"
)

func entry(id, ts string) models.Entry {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return models.Entry{ID: id, Timestamp: t, Type: models.EventLogin}
}

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func groupIDs(g Group) []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.ID
	}
	return out
}

func TestGroupByDate(t *testing.T) {
	t.Run("groups are ordered newest date first", func(t *testing.T) {
		entries := []models.Entry{
			entry("a", "2024-01-14T10:00:00Z"),
			entry("b", "2024-01-15T09:00:00Z"),
		}
		groups := GroupByDate(entries, true, time.UTC)
		assert.Equal(t, []string{"2024-01-15", "2024-01-14"}, keys(groups))
		assert.Equal(t, "Jan 15, 2024", groups[0].Label)
	})

	t.Run("entries keep input order within a group", func(t *testing.T) {
		entries := []models.Entry{
			entry("a", "2024-01-15T08:00:00Z"),
			entry("b", "2024-01-14T10:00:00Z"),
			entry("c", "2024-01-15T20:00:00Z"),
			entry("d", "2024-01-15T01:00:00Z"),
		}
		groups := GroupByDate(entries, true, nil)
		require.Len(t, groups, 2)
		assert.Equal(t, []string{"a", "c", "d"}, groupIDs(groups[0]))
		assert.Equal(t, []string{"b"}, groupIDs(groups[1]))
	})

	t.Run("grouping off yields one unlabeled group", func(t *testing.T) {
		entries := models.SampleEntries()
		groups := GroupByDate(entries, false, nil)
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].Key)
		assert.Empty(t, groups[0].Label)
		assert.Len(t, groups[0].Entries, len(entries))
	})

	t.Run("empty input yields no groups", func(t *testing.T) {
		assert.Empty(t, GroupByDate(nil, true, nil))
		assert.Empty(t, GroupByDate(nil, false, nil))
	})

	t.Run("location decides the calendar date", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		entries := []models.Entry{entry("late", "2024-01-15T03:00:00Z")}
		groups := GroupByDate(entries, true, ny)
		assert.Equal(t, []string{"2024-01-14"}, keys(groups))
	})
}

func TestGroupByDateCompleteness(t *testing.T) {
	entries := models.SampleEntries()
	groups := GroupByDate(entries, true, time.UTC)

	assert.Equal(t, []string{"2024-01-15", "2024-01-14", "2024-01-13"}, keys(groups))
	assert.Equal(t, len(entries), len(Flatten(groups)))

	seen := map[string]int{}
	for _, e := range Flatten(groups) {
		seen[e.ID]++
	}
	for _, e := range entries {
		assert.Equal(t, 1, seen[e.ID], "entry %s must appear exactly once", e.ID)
	}
}
