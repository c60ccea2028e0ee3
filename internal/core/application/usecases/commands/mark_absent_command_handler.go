package commands

import (
	"context"
	"time"

	"manifest/internal/core/domain/model/item"
)

// MarkAbsentCommandHandler moves items to Absent.
type MarkAbsentCommandHandler struct {
	store ManifestStore
}

// NewMarkAbsentCommandHandler creates a MarkAbsentCommandHandler.
func NewMarkAbsentCommandHandler(store ManifestStore) MarkAbsentCommandHandler {
	return MarkAbsentCommandHandler{store: store}
}

// Handle records the absence. Missing name or address fails without any change.
func (h *MarkAbsentCommandHandler) Handle(ctx context.Context, cmd MarkAbsentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.store.Mutate(ctx, cmd.ItemID(), func(it *item.Item, now time.Time) error {
		return it.MarkAbsent(cmd.RedeliveryAt(), cmd.Note(), now)
	})
}
