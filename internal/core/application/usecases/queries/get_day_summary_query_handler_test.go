package queries_test

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

	"manifest/internal/adapters/out/postgres/recordrepo"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
)

type GetDaySummaryQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetDaySummaryQueryHandler
}

func (suite *GetDaySummaryQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&recordrepo.SyncRecordDTO{}))

	suite.handler = queries.NewGetDaySummaryQueryHandler(db)
}

func (suite *GetDaySummaryQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetDaySummaryQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE sync_records").Error)
}

func (suite *GetDaySummaryQueryHandlerTestSuite) TestHandle_EmptyDay_ReturnsZero() {
	query, err := queries.NewGetDaySummaryQuery(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Zero(resp.Total)
	suite.Empty(resp.ByStatus)
}

func (suite *GetDaySummaryQueryHandlerTestSuite) TestHandle_GroupsByStatus() {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	repo := recordrepo.NewGormSyncRecordRepository(suite.db)

	for i, code := range []string{"A1", "A2", "A3"} {
		it, err := item.NewItem(kernel.NewUUID(), item.Candidate{
			Source: item.SourceManual, Code: code, Name: "Sato", Address: "Tokyo",
		}, i+1, day.Add(time.Duration(9+i)*time.Hour))
		suite.Require().NoError(err)
		if code == "A3" {
			suite.Require().NoError(it.MarkAbsent("", "", day.Add(15*time.Hour)))
		}
		suite.Require().NoError(repo.Add(ctx, it))
	}
	other, err := item.NewItem(kernel.NewUUID(), item.Candidate{Source: item.SourceScan, Code: "B1"}, 1, day.AddDate(0, 0, -1))
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Add(ctx, other))

	query, err := queries.NewGetDaySummaryQuery(day.Add(10 * time.Hour))
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(3, resp.Total)
	suite.Equal(map[string]int{"pending": 2, "absent": 1}, resp.ByStatus)
	suite.True(day.Equal(resp.Day))
}

func TestGetDaySummaryQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetDaySummaryQueryHandlerTestSuite))
}
