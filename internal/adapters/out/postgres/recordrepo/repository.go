package recordrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// GormSyncRecordRepository implements ports.SyncRecordRepository using GORM.
type GormSyncRecordRepository struct {
	db *gorm.DB
}

// NewGormSyncRecordRepository creates a new GORM sync record repository.
func NewGormSyncRecordRepository(db *gorm.DB) *GormSyncRecordRepository {
	return &GormSyncRecordRepository{db: db}
}

// Add inserts the record for a new item.
func (r *GormSyncRecordRepository) Add(ctx context.Context, it *item.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(it)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewPersistenceError("add sync record", err)
	}

	return nil
}

// UpdateFields writes the listed fields and updated_at, leaving every other column alone.
func (r *GormSyncRecordRepository) UpdateFields(ctx context.Context, it *item.Item, fields []ports.SyncField) error {
	if err := it.Validate(); err != nil {
		return err
	}

	columns, err := columnsFor(fields)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("fields", err)
	}
	dto, err := fromDomain(it)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&SyncRecordDTO{}).
		Where("id = ?", dto.ID).
		Select(columns).
		Updates(&dto)
	if result.Error != nil {
		return errs.NewPersistenceError("update sync record", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("sync record", it.ID().String())
	}

	return nil
}

// Get retrieves a record by item id.
func (r *GormSyncRecordRepository) Get(ctx context.Context, id kernel.UUID) (*item.Item, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SyncRecordDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("sync record", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByDay returns the records created on day's date, newest first.
func (r *GormSyncRecordRepository) ListByDay(ctx context.Context, day time.Time) ([]*item.Item, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var dtos []SyncRecordDTO
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// ListAll returns every record, newest first.
func (r *GormSyncRecordRepository) ListAll(ctx context.Context) ([]*item.Item, error) {
	var dtos []SyncRecordDTO
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

func toDomainAll(dtos []SyncRecordDTO) ([]*item.Item, error) {
	items := make([]*item.Item, 0, len(dtos))
	for _, dto := range dtos {
		it, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
