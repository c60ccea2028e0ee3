// Package commands contains the operations that change the manifest.
// Every command is validated at construction; handlers apply it through the
// manifest store or, for synchronization, inside a unit of work.
package commands

import (
	"context"
	"time"

	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/application/scangate"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
)

type (
	// ManifestStore is the write side of manifest.Store.
	ManifestStore interface {
		Add(ctx context.Context, c item.Candidate) (kernel.UUID, error)
		Update(ctx context.Context, id kernel.UUID, patch item.Patch) error
		Remove(ctx context.Context, id kernel.UUID) error
		PurgeDelivered(ctx context.Context) (int, error)
		Mutate(ctx context.Context, id kernel.UUID, fn func(it *item.Item, now time.Time) error) error
		ApplyOrder(ctx context.Context, ids []kernel.UUID) error
		Import(ctx context.Context, items []*item.Item) (int, []error, error)
		Get(id kernel.UUID) (*item.Item, error)
		List(filter item.StatusFilter) []*item.Item
	}

	// ScanGate opens confirmation sessions.
	ScanGate interface {
		Open(ctx context.Context, itemID kernel.UUID) (*scangate.Session, error)
	}

	// Annotator resolves coordinates.
	Annotator interface {
		Resolve(ctx context.Context, address string) (kernel.Coordinates, bool)
		BatchResolve(ctx context.Context, delay time.Duration) (geoannotator.BatchReport, error)
	}

	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// SyncRepoFactory provides the sync record repository within a transaction.
	SyncRepoFactory interface {
		SyncRecordRepository() ports.SyncRecordRepository
	}

	// SyncUoW manages transactions against the synchronization backend.
	SyncUoW interface {
		TxManager
		SyncRepoFactory
	}

	// SyncUoWFactory creates new sync unit of work instances.
	SyncUoWFactory interface {
		Create() SyncUoW
	}
)
