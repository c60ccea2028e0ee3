package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"manifest/internal/core/domain/model/item"
)

// snapshotVersion tags the document layout written by Save.
const snapshotVersion = 1

type snapshotDocument struct {
	Version int       `json:"version"`
	Items   []itemDTO `json:"items"`
}

// SnapshotStore implements ports.SnapshotStore as one JSON document under a fixed key.
type SnapshotStore struct {
	client redis.UniversalClient
	key    string
}

// NewSnapshotStore creates a store writing to key.
func NewSnapshotStore(client redis.UniversalClient, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

// Load reads the snapshot. A missing key is an empty manifest.
func (s *SnapshotStore) Load(ctx context.Context) ([]*item.Item, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*item.Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", s.key, err)
	}

	items := make([]*item.Item, 0, len(doc.Items))
	for i, dto := range doc.Items {
		it, err := toDomain(dto)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %q item %d: %w", s.key, i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Save overwrites the snapshot with items.
func (s *SnapshotStore) Save(ctx context.Context, items []*item.Item) error {
	doc := snapshotDocument{Version: snapshotVersion, Items: make([]itemDTO, 0, len(items))}
	for _, it := range items {
		doc.Items = append(doc.Items, fromDomain(it))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, 0).Err()
}
