package commands

import (
	"errors"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrUpdateItemCommandIsNotConstructed = errors.New(
	"UpdateItemCommand must be created via NewUpdateItemCommand constructor",
)

// UpdateItemCommand merges a partial patch into an item. It never changes status.
type UpdateItemCommand struct { //nolint:recvcheck //using for validation
	itemID kernel.UUID
	patch  item.Patch

	guard guard.ConstructorGuard
}

// NewUpdateItemCommand rejects invalid ids and empty patches.
func NewUpdateItemCommand(itemID kernel.UUID, patch item.Patch) (UpdateItemCommand, error) {
	c := UpdateItemCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setItemID(itemID), c.setPatch(patch)); err != nil {
		return UpdateItemCommand{}, err
	}
	return c, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateItemCommand) Validate() error {
	return c.guard.Validate(ErrUpdateItemCommandIsNotConstructed)
}

func (c UpdateItemCommand) ItemID() kernel.UUID { return c.itemID }
func (c UpdateItemCommand) Patch() item.Patch   { return c.patch }

func (c *UpdateItemCommand) setItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.itemID = id
	return nil
}

func (c *UpdateItemCommand) setPatch(p item.Patch) error {
	if p.IsEmpty() {
		return errs.NewValueIsRequiredError("patch")
	}
	c.patch = p
	return nil
}
