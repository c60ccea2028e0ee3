package commands

import (
	"context"
	"errors"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrImportItemsCommandIsNotConstructed = errors.New(
	"ImportItemsCommand must be created via NewImportItemsCommand constructor",
)

// ImportItemsCommand carries items parsed from an export file.
type ImportItemsCommand struct { //nolint:recvcheck //using for validation
	items []*item.Item

	guard guard.ConstructorGuard
}

// NewImportItemsCommand requires at least one item.
func NewImportItemsCommand(items []*item.Item) (ImportItemsCommand, error) {
	if len(items) == 0 {
		return ImportItemsCommand{}, errs.NewValueIsRequiredError("items")
	}
	return ImportItemsCommand{items: items, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ImportItemsCommand) Validate() error {
	return c.guard.Validate(ErrImportItemsCommandIsNotConstructed)
}

func (c ImportItemsCommand) Items() []*item.Item { return c.items }

// ImportReport tells how many items were inserted and why the others were not.
type ImportReport struct {
	Inserted int
	Rejected []error
}

// ImportItemsCommandHandler merges imported items into the manifest.
type ImportItemsCommandHandler struct {
	store ManifestStore
}

// NewImportItemsCommandHandler creates an ImportItemsCommandHandler.
func NewImportItemsCommandHandler(store ManifestStore) ImportItemsCommandHandler {
	return ImportItemsCommandHandler{store: store}
}

// Handle inserts unknown items; known ids are skipped and active-code clashes rejected.
func (h *ImportItemsCommandHandler) Handle(ctx context.Context, cmd ImportItemsCommand) (ImportReport, error) {
	if err := cmd.Validate(); err != nil {
		return ImportReport{}, err
	}
	inserted, rejected, err := h.store.Import(ctx, cmd.Items())
	return ImportReport{Inserted: inserted, Rejected: rejected}, err
}
