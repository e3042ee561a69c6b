// Package index provides full-text search over the library.
package index

import (
	"context"

	"github.com/hyperjump/tana/internal/models"
)

// ItemIndex defines search operations over stored library items.
type ItemIndex interface {
	Index(ctx context.Context, item *models.MediaItem) error
	Delete(ctx context.Context, id string) error
	// Search returns up to limit hits for query, restricted to mediaType
	// when it is non-empty.
	Search(ctx context.Context, query string, mediaType models.MediaType, limit int) ([]*Hit, error)
	// Rebuild indexes all given items in a single batch. Used to
	// repopulate a fresh index from storage.
	Rebuild(ctx context.Context, items []*models.MediaItem) error
	Close() error
	// DocCount returns the total number of indexed items.
	DocCount() (uint64, error)
}

// Hit is a single search hit. The ID refers to a stored media item.
type Hit struct {
	ID    string
	Score float64
}
