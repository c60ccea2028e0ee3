package commands

import (
	"context"
	"errors"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/pkg/errs"
)

// ErrExtendedStatusesDisabled is the cause reported when peer statuses are switched off.
var ErrExtendedStatusesDisabled = errors.New("extended statuses are disabled in this deployment")

// SetPeerStatusCommandHandler applies peer statuses when the deployment allows them.
type SetPeerStatusCommandHandler struct {
	store   ManifestStore
	enabled bool
}

// NewSetPeerStatusCommandHandler creates a handler; enabled mirrors EXTENDED_STATUSES.
func NewSetPeerStatusCommandHandler(store ManifestStore, enabled bool) SetPeerStatusCommandHandler {
	return SetPeerStatusCommandHandler{store: store, enabled: enabled}
}

// Handle moves the item to the requested peer status.
func (h *SetPeerStatusCommandHandler) Handle(ctx context.Context, cmd SetPeerStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !h.enabled {
		return errs.NewValueIsInvalidErrorWithCause("status", ErrExtendedStatusesDisabled)
	}
	return h.store.Mutate(ctx, cmd.ItemID(), func(it *item.Item, now time.Time) error {
		return it.SetPeerStatus(cmd.Status(), cmd.Note(), now)
	})
}
