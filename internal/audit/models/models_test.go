package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "statedeck/pkg/domain-errors"
)

func TestEventTypeCategory(t *testing.T) {
	tests := []struct {
		name     string
		event    EventType
		expected Category
	}{
		{name: "api key creation is security", event: EventAPIKeyCreated, expected: CategorySecurity},
		{name: "state deletion is compliance", event: EventStateDeleted, expected: CategoryCompliance},
		{name: "login is operations", event: EventLogin, expected: CategoryOperations},
		{name: "unknown defaults to operations", event: EventType("something_new"), expected: CategoryOperations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Category())
		})
	}
}

func TestEventTypeLabel(t *testing.T) {
	assert.Equal(t, "Api key created", EventAPIKeyCreated.Label())
	assert.Equal(t, "", EventType("").Label())
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{ID: "e1", Timestamp: time.Now(), Type: EventLogin}

	t.Run("valid entry passes", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing id", func(t *testing.T) {
		e := valid
		e.ID = "  "
		err := e.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("zero timestamp", func(t *testing.T) {
		e := valid
		e.Timestamp = time.Time{}
		assert.ErrorContains(t, e.Validate(), "timestamp is required")
	})

	t.Run("missing type", func(t *testing.T) {
		e := valid
		e.Type = ""
		assert.ErrorContains(t, e.Validate(), "type is required")
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-15T14:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, 2024, ts.Year())
	})

	t.Run("fractional seconds with offset", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-15T14:30:00.123+02:00")
		require.NoError(t, err)
		assert.Equal(t, 12, ts.UTC().Hour())
	})

	t.Run("garbage is a validation error", func(t *testing.T) {
		_, err := ParseTimestamp("yesterday")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestSampleEntries(t *testing.T) {
	entries := SampleEntries()
	require.Len(t, entries, 10)
	require.NoError(t, EnsureUniqueIDs(entries))

	workspaces := map[string]struct{}{}
	for _, e := range entries {
		require.NoError(t, e.Validate())
		workspaces[e.Workspace] = struct{}{}
	}
	assert.Len(t, workspaces, 3)

	t.Run("each call returns an independent slice", func(t *testing.T) {
		a := SampleEntries()
		a[0].Description = "changed"
		assert.NotEqual(t, "changed", SampleEntries()[0].Description)
	})
}

func TestEnsureUniqueIDs(t *testing.T) {
	entries := []Entry{{ID: "a"}, {ID: "b"}, {ID: "a"}}
	err := EnsureUniqueIDs(entries)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Contains(t, err.Error(), `"a"`)
}
