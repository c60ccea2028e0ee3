package commands

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

var ErrSyncManifestCommandIsNotConstructed = errors.New(
	"SyncManifestCommand must be created via NewSyncManifestCommand constructor",
)

// SyncManifestCommand pushes the local manifest to the synchronization backend.
type SyncManifestCommand struct {
	guard guard.ConstructorGuard
}

// NewSyncManifestCommand creates the command.
func NewSyncManifestCommand() SyncManifestCommand {
	return SyncManifestCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c SyncManifestCommand) Validate() error {
	return c.guard.Validate(ErrSyncManifestCommandIsNotConstructed)
}

// SyncReport counts what one synchronization run did.
type SyncReport struct {
	Created   int
	Updated   int
	Unchanged int
}

// SyncManifestCommandHandler mirrors local items into sync records. Only changed
// fields are written; the whole run shares one transaction.
type SyncManifestCommandHandler struct {
	store      ManifestStore
	uowFactory SyncUoWFactory
	logger     *slog.Logger
}

// NewSyncManifestCommandHandler creates a SyncManifestCommandHandler.
func NewSyncManifestCommandHandler(store ManifestStore, uowFactory SyncUoWFactory, logger *slog.Logger) SyncManifestCommandHandler {
	return SyncManifestCommandHandler{
		store:      store,
		uowFactory: uowFactory,
		logger:     logger.With("component", "manifest-sync"),
	}
}

// Handle runs the synchronization.
func (h *SyncManifestCommandHandler) Handle(ctx context.Context, cmd SyncManifestCommand) (SyncReport, error) {
	if err := cmd.Validate(); err != nil {
		return SyncReport{}, err
	}

	items := h.store.List(item.AllStatuses())
	if len(items) == 0 {
		return SyncReport{}, nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return SyncReport{}, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	repo := uow.SyncRecordRepository()
	var report SyncReport

	for _, local := range items {
		remote, err := repo.Get(ctx, local.ID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			if err := repo.Add(ctx, local); err != nil {
				return SyncReport{}, err
			}
			report.Created++
			continue
		}
		if err != nil {
			return SyncReport{}, err
		}

		fields := DiffFields(local, remote)
		if len(fields) == 0 {
			report.Unchanged++
			continue
		}
		if err := repo.UpdateFields(ctx, local, fields); err != nil {
			return SyncReport{}, err
		}
		report.Updated++
	}

	if err := uow.Commit(ctx); err != nil {
		return SyncReport{}, err
	}

	h.logger.InfoContext(ctx, "manifest synchronized",
		"created", report.Created, "updated", report.Updated, "unchanged", report.Unchanged)
	return report, nil
}

// DiffFields lists the fields where local differs from remote. updated_at is
// appended whenever anything else changed.
func DiffFields(local, remote *item.Item) []ports.SyncField {
	var fields []ports.SyncField
	add := func(changed bool, f ports.SyncField) {
		if changed {
			fields = append(fields, f)
		}
	}

	add(local.Code() != remote.Code(), ports.SyncFieldCode)
	add(local.Kind() != remote.Kind(), ports.SyncFieldKind)
	add(local.Name() != remote.Name(), ports.SyncFieldName)
	add(local.Address() != remote.Address(), ports.SyncFieldAddress)
	add(local.Phone() != remote.Phone(), ports.SyncFieldPhone)
	add(local.Status() != remote.Status(), ports.SyncFieldStatus)
	add(local.DeliveryMethod() != remote.DeliveryMethod(), ports.SyncFieldDeliveryMethod)
	add(local.Memo() != remote.Memo(), ports.SyncFieldMemo)
	add(local.RedeliveryAt() != remote.RedeliveryAt(), ports.SyncFieldRedeliveryAt)
	add(local.Disposition() != remote.Disposition(), ports.SyncFieldDisposition)
	add(!sameCoordinates(local, remote), ports.SyncFieldCoordinates)
	add(local.Order() != remote.Order(), ports.SyncFieldOrder)
	add(!slices.EqualFunc(local.Attempts(), remote.Attempts(), sameAttempt), ports.SyncFieldAttempts)

	if len(fields) > 0 {
		fields = append(fields, ports.SyncFieldUpdatedAt)
	}
	return fields
}

func sameCoordinates(a, b *item.Item) bool {
	ca, cb := a.Coordinates(), b.Coordinates()
	if ca == nil || cb == nil {
		return ca == nil && cb == nil
	}
	return ca.Lat() == cb.Lat() && ca.Lng() == cb.Lng() && ca.Fixed() == cb.Fixed()
}

func sameAttempt(a, b item.Attempt) bool {
	return a.At.Equal(b.At) && a.Event == b.Event && a.Note == b.Note
}
