package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"statedeck/internal/audit/models"
	"statedeck/pkg/platform/sentinel"
	"statedeck/pkg/platform/tx"
)

// Store persists entries in the audit_entries table with metadata as jsonb.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEntries = `
	SELECT id, timestamp, event_type, description, actor, workspace,
		   severity, status, ip_address, user_agent, resource, metadata
	FROM audit_entries
	ORDER BY timestamp DESC, id
`

// Append inserts an entry. Redelivered entries hit ON CONFLICT and are
// reported as sentinel.ErrConflict.
func (s *Store) Append(ctx context.Context, entry models.Entry) error {
	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal entry metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_entries (
			id, timestamp, event_type, description, actor, workspace,
			severity, status, ip_address, user_agent, resource, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		string(entry.Type),
		entry.Description,
		entry.User,
		entry.Workspace,
		string(entry.Severity),
		string(entry.Status),
		entry.IPAddress,
		entry.UserAgent,
		entry.Resource,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, sentinel.ErrConflict)
	}
	return nil
}

// List returns every entry, newest first.
func (s *Store) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, selectEntries)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListRecent returns at most limit entries, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, selectEntries+" LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	var entries []models.Entry
	for rows.Next() {
		var (
			e                           models.Entry
			eventType, severity, status string
			metadata                    []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&eventType,
			&e.Description,
			&e.User,
			&e.Workspace,
			&severity,
			&status,
			&e.IPAddress,
			&e.UserAgent,
			&e.Resource,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Type = models.EventType(eventType)
		e.Severity = models.Severity(severity)
		e.Status = models.Status(status)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for entry %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
