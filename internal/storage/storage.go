// Package storage defines the persistence interface for library items.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/tana/internal/models"
)

// ErrNotFound is returned when no item matches the given ID.
var ErrNotFound = errors.New("item not found")

// ErrDuplicate is returned when an insert collides with an existing item,
// either by ID or by (source, external_id).
var ErrDuplicate = errors.New("item already exists")

// ListFilter narrows ListItems results. Zero values mean no filtering.
type ListFilter struct {
	MediaType models.MediaType
	Status    models.Status
	Favorite  *bool
	Tag       string
}

// Storage defines library item persistence operations.
type Storage interface {
	CreateItem(ctx context.Context, item *models.MediaItem) error
	GetItem(ctx context.Context, id string) (*models.MediaItem, error)
	UpdateItem(ctx context.Context, item *models.MediaItem) error
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ListFilter, offset, limit int) ([]*models.MediaItem, error)

	CountItems(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.Stats, error)

	Close() error
}
