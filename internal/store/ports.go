// Package store defines the persistence port for the ledger book.
package store

import (
	"context"

	"khata/internal/core"
)

// Store persists the book's two collections. Save must write both
// atomically; Load on an empty store returns an empty snapshot, not an
// error.
type Store interface {
	Load(ctx context.Context) (core.Snapshot, error)
	Save(ctx context.Context, snap core.Snapshot) error
}
