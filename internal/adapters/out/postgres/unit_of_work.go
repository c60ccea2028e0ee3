// Package postgres runs sync-backend writes inside GORM transactions.
//
// Repositories obtained from a unit of work join its transaction once Begin has
// been called and use the plain connection otherwise:
//
//	uow := postgres.NewGormUnitOfWorkFactory(db).Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.SyncRecordRepository().Add(ctx, it); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"

	"gorm.io/gorm"

	"manifest/internal/adapters/out/postgres/recordrepo"
	"manifest/internal/core/ports"
)

type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork wraps at most one open transaction.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin opens the transaction. It is a no-op while one is already open.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit fails with gorm.ErrInvalidTransaction when no transaction is open.
func (uow *GormUnitOfWork) Commit(context.Context) error {
	return uow.finish((*gorm.DB).Commit)
}

// Rollback fails with gorm.ErrInvalidTransaction when no transaction is open, which
// is what a deferred rollback after Commit sees.
func (uow *GormUnitOfWork) Rollback(context.Context) error {
	return uow.finish((*gorm.DB).Rollback)
}

func (uow *GormUnitOfWork) finish(end func(*gorm.DB) *gorm.DB) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	tx := uow.tx
	uow.tx = nil
	return end(tx).Error
}

// SyncRecordRepository is bound to the open transaction, if any.
func (uow *GormUnitOfWork) SyncRecordRepository() ports.SyncRecordRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return recordrepo.NewGormSyncRecordRepository(db)
}
