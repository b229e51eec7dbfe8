package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and brokers return
// these (optionally wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: record or cache key does not exist
//   - ErrConflict: a record with the same identity already exists
//   - ErrUnavailable: backing service could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
