package commands

import (
	"context"

	"manifest/internal/core/domain/model/kernel"
)

// AddItemCommandHandler registers items in the manifest.
type AddItemCommandHandler struct {
	store ManifestStore
}

// NewAddItemCommandHandler creates an AddItemCommandHandler.
func NewAddItemCommandHandler(store ManifestStore) AddItemCommandHandler {
	return AddItemCommandHandler{store: store}
}

// Handle adds the candidate and returns the new id. Duplicates of active codes fail
// with errs.DuplicateCodeError.
func (h *AddItemCommandHandler) Handle(ctx context.Context, cmd AddItemCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}
	return h.store.Add(ctx, cmd.Candidate())
}
