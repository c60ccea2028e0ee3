// Package recordrepo persists sync records: one row per manifest item, keyed by the
// item id. Attempts are stored as a JSON document so the history survives intact.
package recordrepo

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
)

// SyncRecordDTO is the table layout of a sync record. Timestamps come from the
// domain, so gorm's automatic time tracking is turned off.
type SyncRecordDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code             string    `gorm:"index"`
	Kind             string
	Name             string
	Address          string
	Phone            string
	Status           string `gorm:"index"`
	DeliveryMethod   string
	Memo             string
	RedeliveryAt     string
	Disposition      string
	Lat              *float64
	Lng              *float64
	CoordinatesFixed bool
	SortOrder        int
	Attempts         string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
}

// TableName specifies the database table name for sync records.
func (SyncRecordDTO) TableName() string {
	return "sync_records"
}

// AttemptDTO is one element of the attempts JSON column.
type AttemptDTO struct {
	At    time.Time `json:"at"`
	Event string    `json:"event"`
	Note  string    `json:"note,omitempty"`
}

// columnsFor maps sync fields to the columns they occupy.
func columnsFor(fields []ports.SyncField) ([]string, error) {
	columns := make([]string, 0, len(fields)+2)
	seen := map[string]bool{}
	push := func(c string) {
		if !seen[c] {
			seen[c] = true
			columns = append(columns, c)
		}
	}

	for _, f := range fields {
		switch f {
		case ports.SyncFieldCoordinates:
			push("lat")
			push("lng")
			push("coordinates_fixed")
		case ports.SyncFieldCode, ports.SyncFieldKind, ports.SyncFieldName, ports.SyncFieldAddress,
			ports.SyncFieldPhone, ports.SyncFieldStatus, ports.SyncFieldDeliveryMethod, ports.SyncFieldMemo,
			ports.SyncFieldRedeliveryAt, ports.SyncFieldDisposition, ports.SyncFieldOrder,
			ports.SyncFieldAttempts, ports.SyncFieldUpdatedAt:
			push(string(f))
		default:
			return nil, errors.New("unknown sync field " + string(f))
		}
	}
	push(string(ports.SyncFieldUpdatedAt))
	return columns, nil
}

func fromDomain(it *item.Item) (SyncRecordDTO, error) {
	attempts := it.Attempts()
	dtos := make([]AttemptDTO, 0, len(attempts))
	for _, a := range attempts {
		dtos = append(dtos, AttemptDTO{At: a.At, Event: string(a.Event), Note: a.Note})
	}
	raw, err := json.Marshal(dtos)
	if err != nil {
		return SyncRecordDTO{}, err
	}

	dto := SyncRecordDTO{
		ID:             it.ID().Bytes(),
		Code:           it.Code(),
		Kind:           it.Kind().String(),
		Name:           it.Name(),
		Address:        it.Address(),
		Phone:          it.Phone(),
		Status:         it.Status().String(),
		DeliveryMethod: it.DeliveryMethod(),
		Memo:           it.Memo(),
		RedeliveryAt:   it.RedeliveryAt(),
		Disposition:    string(it.Disposition()),
		SortOrder:      it.Order(),
		Attempts:       string(raw),
		CreatedAt:      it.CreatedAt(),
		UpdatedAt:      it.UpdatedAt(),
	}
	if c := it.Coordinates(); c != nil {
		lat, lng := c.Lat(), c.Lng()
		dto.Lat = &lat
		dto.Lng = &lng
		dto.CoordinatesFixed = c.Fixed()
	}
	return dto, nil
}

func toDomain(dto SyncRecordDTO) (*item.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	kind, err := item.ParseKind(dto.Kind)
	if err != nil {
		return nil, err
	}
	status, err := item.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	disposition, err := item.ParseDisposition(dto.Disposition)
	if err != nil {
		return nil, err
	}

	var attempts []AttemptDTO
	if dto.Attempts != "" {
		if err := json.Unmarshal([]byte(dto.Attempts), &attempts); err != nil {
			return nil, err
		}
	}
	history := make([]item.Attempt, 0, len(attempts))
	for _, a := range attempts {
		history = append(history, item.Attempt{At: a.At, Event: item.EventType(a.Event), Note: a.Note})
	}

	var coords *kernel.Coordinates
	if dto.Lat != nil && dto.Lng != nil {
		c, err := kernel.RestoreCoordinates(*dto.Lat, *dto.Lng, dto.CoordinatesFixed)
		if err != nil {
			return nil, err
		}
		coords = &c
	}

	return item.RestoreItem(item.RestoreParams{
		ID:             id,
		Code:           dto.Code,
		Kind:           kind,
		Name:           dto.Name,
		Address:        dto.Address,
		Phone:          dto.Phone,
		Status:         status,
		DeliveryMethod: dto.DeliveryMethod,
		Memo:           dto.Memo,
		RedeliveryAt:   dto.RedeliveryAt,
		Disposition:    disposition,
		Coordinates:    coords,
		Order:          dto.SortOrder,
		Attempts:       history,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	})
}
