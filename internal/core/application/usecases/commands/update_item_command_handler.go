package commands

import "context"

// UpdateItemCommandHandler applies field edits.
type UpdateItemCommandHandler struct {
	store ManifestStore
}

// NewUpdateItemCommandHandler creates an UpdateItemCommandHandler.
func NewUpdateItemCommandHandler(store ManifestStore) UpdateItemCommandHandler {
	return UpdateItemCommandHandler{store: store}
}

// Handle merges the patch and persists.
func (h *UpdateItemCommandHandler) Handle(ctx context.Context, cmd UpdateItemCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.store.Update(ctx, cmd.ItemID(), cmd.Patch())
}
