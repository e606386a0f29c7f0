package storage

import (
	"context"

	"veridian-hq/covenant/pkg/contract"
)

// Store persists per-module contracts. Load returns an empty contract for
// modules that have never been certified; absence is not an error.
type Store interface {
	// Load reads the stored contract for a module path.
	Load(ctx context.Context, modulePath string) (contract.Contract, error)

	// Save replaces the stored contract for a module path.
	Save(ctx context.Context, modulePath string, c contract.Contract) error

	// Close releases any held resources.
	Close() error
}
