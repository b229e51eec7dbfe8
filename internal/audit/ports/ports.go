// Package ports defines the storage interface of the audit module.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"

	"statedeck/internal/audit/models"
)

// Store persists audit entries.
type Store interface {
	// Append returns sentinel.ErrConflict when the entry id already exists.
	Append(ctx context.Context, entry models.Entry) error
	// List returns every entry, newest first.
	List(ctx context.Context) ([]models.Entry, error)
	// ListRecent returns at most limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Entry, error)
}
