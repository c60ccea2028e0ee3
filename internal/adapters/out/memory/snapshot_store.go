// Package memory keeps the manifest snapshot in process memory. It backs tests and
// deployments that run without redis; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"manifest/internal/core/domain/model/item"
)

// SnapshotStore implements ports.SnapshotStore with a guarded slice.
type SnapshotStore struct {
	mu    sync.Mutex
	items []*item.Item
	saves int
}

// NewSnapshotStore creates a store seeded with items.
func NewSnapshotStore(items ...*item.Item) *SnapshotStore {
	s := &SnapshotStore{}
	s.items = cloneAll(items)
	return s
}

// Load returns copies of the saved items.
func (s *SnapshotStore) Load(_ context.Context) ([]*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneAll(s.items), nil
}

// Save replaces the snapshot.
func (s *SnapshotStore) Save(_ context.Context, items []*item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = cloneAll(items)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *SnapshotStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

func cloneAll(items []*item.Item) []*item.Item {
	out := make([]*item.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	return out
}
