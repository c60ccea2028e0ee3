package commands

import "context"

// RemoveItemCommandHandler deletes items.
type RemoveItemCommandHandler struct {
	store ManifestStore
}

// NewRemoveItemCommandHandler creates a RemoveItemCommandHandler.
func NewRemoveItemCommandHandler(store ManifestStore) RemoveItemCommandHandler {
	return RemoveItemCommandHandler{store: store}
}

// Handle removes the item.
func (h *RemoveItemCommandHandler) Handle(ctx context.Context, cmd RemoveItemCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.store.Remove(ctx, cmd.ItemID())
}
