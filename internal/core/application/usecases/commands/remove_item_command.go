package commands

import (
	"errors"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/guard"
)

var ErrRemoveItemCommandIsNotConstructed = errors.New(
	"RemoveItemCommand must be created via NewRemoveItemCommand constructor",
)

// RemoveItemCommand deletes one item permanently (manual correction).
type RemoveItemCommand struct { //nolint:recvcheck //using for validation
	itemID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRemoveItemCommand validates the id.
func NewRemoveItemCommand(itemID kernel.UUID) (RemoveItemCommand, error) {
	if err := itemID.Validate(); err != nil {
		return RemoveItemCommand{}, err
	}
	return RemoveItemCommand{itemID: itemID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c RemoveItemCommand) Validate() error {
	return c.guard.Validate(ErrRemoveItemCommandIsNotConstructed)
}

func (c RemoveItemCommand) ItemID() kernel.UUID { return c.itemID }
