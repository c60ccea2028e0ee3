package commands

import (
	"errors"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrReorderItemsCommandIsNotConstructed = errors.New(
	"ReorderItemsCommand must be created via NewReorderItemsCommand constructor",
)

// ReorderItemsCommand carries the visible list in its new sequence.
type ReorderItemsCommand struct { //nolint:recvcheck //using for validation
	itemIDs []kernel.UUID

	guard guard.ConstructorGuard
}

// NewReorderItemsCommand requires at least one id.
func NewReorderItemsCommand(itemIDs []kernel.UUID) (ReorderItemsCommand, error) {
	if len(itemIDs) == 0 {
		return ReorderItemsCommand{}, errs.NewValueIsRequiredError("itemIds")
	}
	for _, id := range itemIDs {
		if err := id.Validate(); err != nil {
			return ReorderItemsCommand{}, err
		}
	}
	return ReorderItemsCommand{
		itemIDs: append([]kernel.UUID{}, itemIDs...),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReorderItemsCommand) Validate() error {
	return c.guard.Validate(ErrReorderItemsCommandIsNotConstructed)
}

// ItemIDs returns a copy of the requested sequence.
func (c ReorderItemsCommand) ItemIDs() []kernel.UUID {
	return append([]kernel.UUID{}, c.itemIDs...)
}
