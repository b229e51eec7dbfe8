// Package ports defines the storage and cache interfaces the versions service
// depends on.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Store,DiffCache

import (
	"context"

	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
)

// Store persists state versions.
type Store interface {
	Save(ctx context.Context, v models.StateVersion) error
	// FindByID returns sentinel.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*models.StateVersion, error)
	// List returns every version, newest first.
	List(ctx context.Context) ([]models.StateVersion, error)
}

// DiffCache memoizes computed diffs. Get returns sentinel.ErrNotFound on a miss.
type DiffCache interface {
	Get(ctx context.Context, from, to models.StateVersion) (*diff.Diff, error)
	Put(ctx context.Context, from, to models.StateVersion, d diff.Diff) error
}
