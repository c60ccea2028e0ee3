package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgres_adapter "manifest/internal/adapters/out/postgres"
	"manifest/internal/adapters/out/postgres/recordrepo"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// UnitOfWorkIntegrationTestSuite tests the GORM unit of work against a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&recordrepo.SyncRecordDTO{}))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE sync_records").Error)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitPersists() {
	ctx := context.Background()
	it := suite.newItem("A1")
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.SyncRecordRepository().Add(ctx, it))
	suite.Require().NoError(uow.Commit(ctx))

	got, err := suite.factory.Create().SyncRecordRepository().Get(ctx, it.ID())
	suite.Require().NoError(err)
	suite.Equal("A1", got.Code())
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction, "nothing is left to roll back after commit")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscards() {
	ctx := context.Background()
	it := suite.newItem("A1")
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.SyncRecordRepository().Add(ctx, it))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().SyncRecordRepository().Get(ctx, it.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_IsolatedUntilCommit() {
	ctx := context.Background()
	it := suite.newItem("A1")
	writer := suite.factory.Create()

	suite.Require().NoError(writer.Begin(ctx))
	suite.Require().NoError(writer.SyncRecordRepository().Add(ctx, it))

	_, err := suite.factory.Create().SyncRecordRepository().Get(ctx, it.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "uncommitted rows must not be visible")

	suite.Require().NoError(writer.Commit(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) newItem(code string) *item.Item {
	it, err := item.NewItem(kernel.NewUUID(), item.Candidate{Source: item.SourceScan, Code: code}, 1,
		time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	return it
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
