package ports

import (
	"context"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
)

// SyncField names a column of the synchronization record that can be updated on its own.
type SyncField string

const (
	SyncFieldCode           SyncField = "code"
	SyncFieldKind           SyncField = "kind"
	SyncFieldName           SyncField = "name"
	SyncFieldAddress        SyncField = "address"
	SyncFieldPhone          SyncField = "phone"
	SyncFieldStatus         SyncField = "status"
	SyncFieldDeliveryMethod SyncField = "delivery_method"
	SyncFieldMemo           SyncField = "memo"
	SyncFieldRedeliveryAt   SyncField = "redelivery_at"
	SyncFieldDisposition    SyncField = "disposition"
	SyncFieldCoordinates    SyncField = "coordinates"
	SyncFieldOrder          SyncField = "sort_order"
	SyncFieldAttempts       SyncField = "attempts"
	SyncFieldUpdatedAt      SyncField = "updated_at"
)

// SyncRecordRepository is the synchronization backend: records keyed by the item id.
type SyncRecordRepository interface {
	// Add creates the record for a new item.
	Add(ctx context.Context, it *item.Item) error

	// UpdateFields writes only the listed fields of it. updated_at is always written.
	UpdateFields(ctx context.Context, it *item.Item, fields []SyncField) error

	// Get returns the stored record or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*item.Item, error)

	// ListByDay returns records created on day's calendar date in day's location,
	// newest first.
	ListByDay(ctx context.Context, day time.Time) ([]*item.Item, error)

	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]*item.Item, error)
}
