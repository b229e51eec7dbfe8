package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statedeck/internal/audit/models"
	"statedeck/pkg/platform/sentinel"
	"statedeck/pkg/platform/tx"
)

var entryColumns = []string{"id", "timestamp", "event_type", "description", "actor", "workspace", "severity", "status", "ip_address", "user_agent", "resource", "metadata"}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestAppend(t *testing.T) {
	entry := models.SampleEntries()[4]

	t.Run("inserts with metadata json", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectExec(`INSERT INTO audit_entries`).
			WithArgs(entry.ID, entry.Timestamp, "state_locked", entry.Description, entry.User, entry.Workspace,
				"info", "success", "", "", entry.Resource, []byte(`{"lockId":"lock-7f3a"}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Append(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing id is a conflict", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectExec(`INSERT INTO audit_entries`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Append(context.Background(), entry)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("joins a transaction from the context", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO audit_entries`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO audit_entries`).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		err := tx.Run(context.Background(), store.db, func(ctx context.Context) error {
			if err := store.Append(ctx, entry); err != nil {
				return err
			}
			return store.Append(ctx, models.SampleEntries()[5])
		})
		assert.ErrorContains(t, err, "deadlock detected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectExec(`INSERT INTO audit_entries`).WillReturnError(errors.New("broken pipe"))

		err := store.Append(context.Background(), entry)
		assert.ErrorContains(t, err, "insert audit entry")
	})
}

func TestList(t *testing.T) {
	store, mock := newTestStore(t)
	ts := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(entryColumns).
		AddRow("event-001", ts, "api_key_created", "Created key", "alice@example.com", "production",
			"info", "success", "192.168.1.10", "curl/8.4.0", "api-key/ci", []byte(`{"keyPrefix":"sk_live"}`)).
		AddRow("event-002", ts.Add(-time.Hour), "login", "Signed in", "bob@example.com", "production",
			"info", "success", "", "", "", nil)
	mock.ExpectQuery(`SELECT .+ FROM audit_entries ORDER BY timestamp DESC, id`).WillReturnRows(rows)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EventAPIKeyCreated, entries[0].Type)
	assert.Equal(t, models.SeverityInfo, entries[0].Severity)
	assert.Equal(t, "sk_live", entries[0].Metadata["keyPrefix"])
	assert.Nil(t, entries[1].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT .+ FROM audit_entries ORDER BY timestamp DESC, id LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	entries, err := store.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
