package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/application/scangate"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type MockManifestStore struct{ mock.Mock }

func (m *MockManifestStore) Add(ctx context.Context, c item.Candidate) (kernel.UUID, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

func (m *MockManifestStore) Update(ctx context.Context, id kernel.UUID, patch item.Patch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *MockManifestStore) Remove(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockManifestStore) PurgeDelivered(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Mutate applies fn to the item given as the first return value, if any.
func (m *MockManifestStore) Mutate(ctx context.Context, id kernel.UUID, fn func(it *item.Item, now time.Time) error) error {
	args := m.Called(ctx, id)
	if it, ok := args.Get(0).(*item.Item); ok && it != nil {
		if err := fn(it, testNow); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockManifestStore) ApplyOrder(ctx context.Context, ids []kernel.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockManifestStore) Import(ctx context.Context, items []*item.Item) (int, []error, error) {
	args := m.Called(ctx, items)
	rejected, _ := args.Get(1).([]error)
	return args.Int(0), rejected, args.Error(2)
}

func (m *MockManifestStore) Get(id kernel.UUID) (*item.Item, error) {
	args := m.Called(id)
	it, _ := args.Get(0).(*item.Item)
	return it, args.Error(1)
}

func (m *MockManifestStore) List(filter item.StatusFilter) []*item.Item {
	items, _ := m.Called(filter).Get(0).([]*item.Item)
	return items
}

type MockAnnotator struct{ mock.Mock }

func (m *MockAnnotator) Resolve(ctx context.Context, address string) (kernel.Coordinates, bool) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Coordinates), args.Bool(1)
}

func (m *MockAnnotator) BatchResolve(ctx context.Context, delay time.Duration) (geoannotator.BatchReport, error) {
	args := m.Called(ctx, delay)
	return args.Get(0).(geoannotator.BatchReport), args.Error(1)
}

type MockScanGate struct{ mock.Mock }

func (m *MockScanGate) Open(ctx context.Context, itemID kernel.UUID) (*scangate.Session, error) {
	args := m.Called(ctx, itemID)
	s, _ := args.Get(0).(*scangate.Session)
	return s, args.Error(1)
}

type MockSyncRecordRepository struct{ mock.Mock }

func (m *MockSyncRecordRepository) Add(ctx context.Context, it *item.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockSyncRecordRepository) UpdateFields(ctx context.Context, it *item.Item, fields []ports.SyncField) error {
	return m.Called(ctx, it, fields).Error(0)
}

func (m *MockSyncRecordRepository) Get(ctx context.Context, id kernel.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(*item.Item)
	return it, args.Error(1)
}

func (m *MockSyncRecordRepository) ListByDay(ctx context.Context, day time.Time) ([]*item.Item, error) {
	args := m.Called(ctx, day)
	items, _ := args.Get(0).([]*item.Item)
	return items, args.Error(1)
}

func (m *MockSyncRecordRepository) ListAll(ctx context.Context) ([]*item.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*item.Item)
	return items, args.Error(1)
}

type MockSyncUoW struct{ mock.Mock }

func (m *MockSyncUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockSyncUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockSyncUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockSyncUoW) SyncRecordRepository() ports.SyncRecordRepository {
	return m.Called().Get(0).(ports.SyncRecordRepository)
}

type MockSyncUoWFactory struct{ mock.Mock }

func (m *MockSyncUoWFactory) Create() commands.SyncUoW {
	return m.Called().Get(0).(commands.SyncUoW)
}

func newItem(t *testing.T, code, name, address string) *item.Item {
	t.Helper()
	it, err := item.NewItem(kernel.NewUUID(), item.Candidate{
		Source:  item.SourceManual,
		Code:    code,
		Name:    name,
		Address: address,
	}, 1, testNow.Add(-time.Hour))
	require.NoError(t, err)
	return it
}
