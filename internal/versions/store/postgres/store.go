package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"statedeck/internal/versions/models"
	"statedeck/pkg/platform/sentinel"
	"statedeck/pkg/platform/tx"
)

// Store persists versions in the state_versions table. Tags use a text[]
// column and content a jsonb column. Calls join a transaction carried by the
// context (see tx.Run).
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL version store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func (s *Store) Save(ctx context.Context, v models.StateVersion) error {
	query := `
		INSERT INTO state_versions (
			id, version, description, created_at, author,
			content, checksum, size_bytes, tags
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	content := []byte(v.Content)
	if len(content) == 0 {
		content = []byte("null")
	}
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		v.ID,
		v.Version,
		v.Description,
		v.CreatedAt,
		v.Author,
		content,
		v.Checksum,
		v.Size,
		pq.Array(v.Tags),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("version %s: %w", v.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert state version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert state version: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("version %s: %w", v.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.StateVersion, error) {
	query := `
		SELECT id, version, description, created_at, author,
			   content, checksum, size_bytes, tags
		FROM state_versions
		WHERE id = $1
	`
	v, err := scanVersion(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query state version: %w", err)
	}
	return v, nil
}

// List returns every version, newest first.
func (s *Store) List(ctx context.Context) ([]models.StateVersion, error) {
	query := `
		SELECT id, version, description, created_at, author,
			   content, checksum, size_bytes, tags
		FROM state_versions
		ORDER BY created_at DESC
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query state versions: %w", err)
	}
	defer rows.Close()

	var versions []models.StateVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan state version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state versions: %w", err)
	}
	return versions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (*models.StateVersion, error) {
	var (
		v       models.StateVersion
		content []byte
		tags    []string
	)
	err := row.Scan(
		&v.ID,
		&v.Version,
		&v.Description,
		&v.CreatedAt,
		&v.Author,
		&content,
		&v.Checksum,
		&v.Size,
		pq.Array(&tags),
	)
	if err != nil {
		return nil, err
	}
	v.Content = content
	v.Tags = tags
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	type sqlStater interface{ SQLState() string }
	var st sqlStater
	if errors.As(err, &st) {
		return st.SQLState() == uniqueViolation
	}
	return false
}
