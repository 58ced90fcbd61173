// Package storage holds the durability abstraction behind the link registry
// and its three interchangeable backends: an indexed SQLite database, a
// local JSON snapshot file, and a remote tabular store reached over HTTP.
package storage

import (
	"context"
	"fmt"

	"github.com/shortyhq/shorty/internal/config"
	"github.com/shortyhq/shorty/internal/models"
)

// Store is the capability set every backend must provide. Backends own
// durability exclusively: no component keeps link state in memory across
// requests outside of a Store implementation.
type Store interface {
	// FindByCode returns the link with the given code, or
	// errors.ErrShortCodeNotFound.
	FindByCode(ctx context.Context, code string) (*models.Link, error)

	// Insert persists a new link. It returns errors.ErrDuplicateCode if a
	// record with the same code already exists, regardless of any check the
	// caller performed beforehand.
	Insert(ctx context.Context, link *models.Link) error

	// IncrementClicks adds exactly 1 to the link's click counter without
	// touching any other field. Backends with a native atomic update use
	// it; the others serialize their read-modify-write.
	IncrementClicks(ctx context.Context, code string) error

	// ListAll returns every stored link. Flat-file and tabular backends
	// also use it internally as their lookup path (linear scan).
	ListAll(ctx context.Context) ([]models.Link, error)

	// RecordClick appends an access event. Events are append-only.
	RecordClick(ctx context.Context, click *models.Click) error

	// Close releases the backend's resources.
	Close() error
}

// Open constructs the backend selected by the configuration. Variant
// dispatch happens exactly once, at startup; everything downstream only
// sees the Store interface.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return NewGormStore(cfg.Storage.SQLiteName)
	case config.BackendFile:
		return NewFileStore(cfg.Storage.FilePath)
	case config.BackendTable:
		return NewTableStore(cfg.Storage.Table.Endpoint, cfg.Storage.Table.APIKey)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
