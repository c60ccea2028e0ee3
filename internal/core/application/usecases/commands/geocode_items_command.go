package commands

import (
	"context"
	"errors"
	"time"

	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrGeocodeItemsCommandIsNotConstructed = errors.New(
	"GeocodeItemsCommand must be created via NewGeocodeItemsCommand constructor",
)

// GeocodeItemsCommand runs a batch resolution with a fixed delay between calls.
type GeocodeItemsCommand struct { //nolint:recvcheck //using for validation
	delay time.Duration

	guard guard.ConstructorGuard
}

// NewGeocodeItemsCommand rejects negative delays.
func NewGeocodeItemsCommand(delay time.Duration) (GeocodeItemsCommand, error) {
	if delay < 0 {
		return GeocodeItemsCommand{}, errs.NewValueIsOutOfRangeError("delay", delay, time.Duration(0), time.Hour)
	}
	return GeocodeItemsCommand{delay: delay, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c GeocodeItemsCommand) Validate() error {
	return c.guard.Validate(ErrGeocodeItemsCommandIsNotConstructed)
}

func (c GeocodeItemsCommand) Delay() time.Duration { return c.delay }

// GeocodeItemsCommandHandler resolves coordinates for the manifest.
type GeocodeItemsCommandHandler struct {
	store     ManifestStore
	annotator Annotator
}

// NewGeocodeItemsCommandHandler creates a GeocodeItemsCommandHandler.
func NewGeocodeItemsCommandHandler(store ManifestStore, annotator Annotator) GeocodeItemsCommandHandler {
	return GeocodeItemsCommandHandler{store: store, annotator: annotator}
}

// Handle runs the batch.
func (h *GeocodeItemsCommandHandler) Handle(ctx context.Context, cmd GeocodeItemsCommand) (geoannotator.BatchReport, error) {
	if err := cmd.Validate(); err != nil {
		return geoannotator.BatchReport{}, err
	}
	return h.annotator.BatchResolve(ctx, cmd.Delay())
}

// HandleOne resolves a single item on explicit operator request. It reports false
// when nothing was found or the item already had coordinates.
func (h *GeocodeItemsCommandHandler) HandleOne(ctx context.Context, itemID kernel.UUID) (bool, error) {
	it, err := h.store.Get(itemID)
	if err != nil {
		return false, err
	}
	if it.Coordinates() != nil {
		return false, nil
	}
	if it.Address() == "" {
		return false, errs.NewValueIsRequiredError("address")
	}

	c, ok := h.annotator.Resolve(ctx, it.Address())
	if !ok {
		return false, nil
	}

	changed := false
	err = h.store.Mutate(ctx, itemID, func(draft *item.Item, now time.Time) error {
		var resolveErr error
		changed, resolveErr = draft.ResolveCoordinates(c, now)
		return resolveErr
	})
	return changed, err
}
