package commands

import "context"

// ReorderItemsCommandHandler persists a manual re-sequence atomically.
type ReorderItemsCommandHandler struct {
	store ManifestStore
}

// NewReorderItemsCommandHandler creates a ReorderItemsCommandHandler.
func NewReorderItemsCommandHandler(store ManifestStore) ReorderItemsCommandHandler {
	return ReorderItemsCommandHandler{store: store}
}

// Handle gives every listed item its 1-based rank as the new order.
func (h *ReorderItemsCommandHandler) Handle(ctx context.Context, cmd ReorderItemsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.store.ApplyOrder(ctx, cmd.ItemIDs())
}
