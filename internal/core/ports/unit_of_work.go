package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork for every command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a transaction boundary over the synchronization backend.
// Client code must explicitly manage the transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// SyncRecordRepository returns a repository bound to the transaction started by Begin.
	SyncRecordRepository() SyncRecordRepository
}
