package commands

import (
	"context"
	"errors"

	"manifest/internal/pkg/guard"
)

var ErrPurgeDeliveredCommandIsNotConstructed = errors.New(
	"PurgeDeliveredCommand must be created via NewPurgeDeliveredCommand constructor",
)

// PurgeDeliveredCommand removes every delivered item.
type PurgeDeliveredCommand struct {
	guard guard.ConstructorGuard
}

// NewPurgeDeliveredCommand creates the command.
func NewPurgeDeliveredCommand() PurgeDeliveredCommand {
	return PurgeDeliveredCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c PurgeDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrPurgeDeliveredCommandIsNotConstructed)
}

// PurgeDeliveredCommandHandler runs the bulk purge.
type PurgeDeliveredCommandHandler struct {
	store ManifestStore
}

// NewPurgeDeliveredCommandHandler creates a PurgeDeliveredCommandHandler.
func NewPurgeDeliveredCommandHandler(store ManifestStore) PurgeDeliveredCommandHandler {
	return PurgeDeliveredCommandHandler{store: store}
}

// Handle returns the number of removed items.
func (h *PurgeDeliveredCommandHandler) Handle(ctx context.Context, cmd PurgeDeliveredCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.store.PurgeDelivered(ctx)
}
