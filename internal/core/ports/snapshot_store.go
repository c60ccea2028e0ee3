package ports

import (
	"context"

	"manifest/internal/core/domain/model/item"
)

// SnapshotStore holds one serialized image of the whole manifest under a fixed key.
type SnapshotStore interface {
	// Load returns the stored items, or an empty slice when nothing was saved yet.
	Load(ctx context.Context) ([]*item.Item, error)

	// Save replaces the stored image with items.
	Save(ctx context.Context, items []*item.Item) error
}
