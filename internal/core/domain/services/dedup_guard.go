package services

import (
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
)

// DedupGuard decides whether a tracking code collides with the manifest.
//
// Only active items count. A code that matches nothing but delivered items is free
// again, which lets a re-delivered parcel be registered under its old label.
type DedupGuard struct{}

// NewDedupGuard creates a DedupGuard.
func NewDedupGuard() DedupGuard {
	return DedupGuard{}
}

// IsDuplicateActive reports whether an active item holds code.
func (g DedupGuard) IsDuplicateActive(items []*item.Item, code string) bool {
	return g.FindActive(items, code, nil) != nil
}

// FindActive returns the active item holding code, skipping the item identified by
// exclude. It returns nil when the code is free. Codes compare verbatim.
func (g DedupGuard) FindActive(items []*item.Item, code string, exclude *kernel.UUID) *item.Item {
	if code == "" {
		return nil
	}
	for _, it := range items {
		if exclude != nil && it.ID().IsEqual(*exclude) {
			continue
		}
		if it.IsActive() && it.Code() == code {
			return it
		}
	}
	return nil
}
