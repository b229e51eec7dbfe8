package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statedeck/internal/audit/models"
	"statedeck/internal/audit/service"
	"statedeck/internal/usage"
	vmodels "statedeck/internal/versions/models"
	dErrors "statedeck/pkg/domain-errors"
)

func execute(t *testing.T, stdin any, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		raw, err := json.Marshal(stdin)
		require.NoError(t, err)
		root.SetIn(bytes.NewReader(raw))
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAuditFilter(t *testing.T) {
	t.Run("text timeline", func(t *testing.T) {
		out, err := execute(t, models.SampleEntries(), "audit", "filter", "--user", "alice")
		require.NoError(t, err)
		assert.Contains(t, out, "Jan 15, 2024")
		assert.Contains(t, out, "event-001")
		assert.Contains(t, out, "showing 4 of 4 entries")
		assert.NotContains(t, out, "more available")
	})

	t.Run("json output with page size flag", func(t *testing.T) {
		out, err := execute(t, models.SampleEntries(), "audit", "filter", "-o", "json", "--page-size", "3", "--type", "login,logout,token_issued,state_locked")
		require.NoError(t, err)

		var res service.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 4, res.Total)
		assert.Equal(t, 3, res.Visible)
		assert.True(t, res.HasMore)
	})

	t.Run("page size from environment", func(t *testing.T) {
		t.Setenv("STATEDECK_PAGE_SIZE", "2")
		out, err := execute(t, models.SampleEntries(), "audit", "filter", "-o", "json")
		require.NoError(t, err)

		var res service.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 2, res.Visible)
	})

	t.Run("page size from config file", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "statectl.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("page-size: 4\noutput: json\n"), 0o600))

		out, err := execute(t, models.SampleEntries(), "audit", "filter", "--config", cfg)
		require.NoError(t, err)

		var res service.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, 4, res.Visible)
	})

	t.Run("duplicate ids are rejected", func(t *testing.T) {
		entries := models.SampleEntries()
		entries[1].ID = entries[0].ID
		_, err := execute(t, entries, "audit", "filter")
		assert.ErrorContains(t, err, "duplicate entry id")
	})

	t.Run("entries without timestamp or type are rejected", func(t *testing.T) {
		tests := []struct {
			name    string
			entries []map[string]any
			wantErr string
		}{
			{
				name:    "missing timestamp",
				entries: []map[string]any{{"id": "e1", "type": "login", "user": "alice"}},
				wantErr: "entry e1: timestamp is required",
			},
			{
				name:    "missing type",
				entries: []map[string]any{{"id": "e2", "timestamp": "2024-01-15T10:00:00Z", "user": "alice"}},
				wantErr: "entry e2: type is required",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				for _, sub := range []string{"filter", "export"} {
					out, err := execute(t, tt.entries, "audit", sub)
					require.Error(t, err)
					assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
					assert.ErrorContains(t, err, tt.wantErr)
					assert.NotContains(t, out, "Jan 1, 0001")
				}
			})
		}
	})

	t.Run("unsupported output", func(t *testing.T) {
		_, err := execute(t, models.SampleEntries(), "audit", "filter", "-o", "xml")
		assert.ErrorContains(t, err, "unsupported output")
	})
}

func TestAuditExport(t *testing.T) {
	t.Run("csv to stdout", func(t *testing.T) {
		out, err := execute(t, models.SampleEntries(), "audit", "export", "--out", "-", "--type", "login")
		require.NoError(t, err)
		assert.Contains(t, out, `"event-002"`)
		assert.NotContains(t, out, `"event-001"`)
	})

	t.Run("json into a directory", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, models.SampleEntries(), "audit", "export", "--format", "json", "--out", dir)
		require.NoError(t, err)

		name := "audit-log-" + time.Now().Format("2006-01-02") + ".json"
		body, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(body), `"totalEntries": 10`)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, models.SampleEntries(), "audit", "export", "--format", "xml", "--out", "-")
		assert.ErrorContains(t, err, "unsupported export format")
	})
}

func TestVersionsDiff(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := execute(t, vmodels.SampleVersions(), "versions", "diff", "--from", "ver-001", "--to", "ver-002")
		require.NoError(t, err)
		assert.Contains(t, out, "--- ver-001 (1.0.0, 1.8 KB)")
		assert.Contains(t, out, "   4 + vpc.nat: true")
		assert.Contains(t, out, "2 additions, 0 deletions, 0 modifications")
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := execute(t, vmodels.SampleVersions(), "versions", "diff", "--from", "ver-001", "--to", "ver-404")
		assert.ErrorContains(t, err, "ver-404")
	})

	t.Run("flags are required", func(t *testing.T) {
		_, err := execute(t, vmodels.SampleVersions(), "versions", "diff", "--from", "ver-001")
		assert.Error(t, err)
	})
}

func TestUsage(t *testing.T) {
	out, err := execute(t, nil, "usage", "--used", "80", "--limit", "100", "--label", "Requests")
	require.NoError(t, err)
	assert.Equal(t, "Requests: 80 of 100 (80%, warning)\n", out)

	out, err = execute(t, nil, "usage", "--used", "12", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "variant: danger")
	assert.Contains(t, out, "overQuota: true")

	out, err = execute(t, nil, "usage", "--used", "NaN", "--limit", "100", "-o", "json")
	require.NoError(t, err)
	var meter usage.Meter
	require.NoError(t, json.Unmarshal([]byte(out), &meter))
	assert.Zero(t, meter.Usage)
	assert.Equal(t, usage.VariantDefault, meter.Reading.Variant)
}

func TestCredentialsInspect(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "erin@example.com",
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	out, err := execute(t, nil, "credentials", "inspect", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "erin@example.com [active]")
	assert.Contains(t, out, "Never expires")
}
