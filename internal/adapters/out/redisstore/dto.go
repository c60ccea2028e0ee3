// Package redisstore stores the manifest snapshot and caches geocoding results in redis.
package redisstore

import (
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
)

// itemDTO is the JSON layout of one item inside the snapshot document.
type itemDTO struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Kind           string       `json:"kind"`
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Phone          string       `json:"phone,omitempty"`
	Status         string       `json:"status"`
	DeliveryMethod string       `json:"deliveryMethod,omitempty"`
	Memo           string       `json:"memo,omitempty"`
	RedeliveryAt   string       `json:"redeliveryAt,omitempty"`
	Disposition    string       `json:"disposition,omitempty"`
	Coordinates    *coordsDTO   `json:"coordinates,omitempty"`
	Order          int          `json:"order"`
	Attempts       []attemptDTO `json:"attempts"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type coordsDTO struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Fixed bool    `json:"fixed,omitempty"`
}

type attemptDTO struct {
	At    time.Time `json:"at"`
	Event string    `json:"event"`
	Note  string    `json:"note,omitempty"`
}

func fromDomain(it *item.Item) itemDTO {
	dto := itemDTO{
		ID:             it.ID().String(),
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
		Order:          it.Order(),
		Attempts:       []attemptDTO{},
		CreatedAt:      it.CreatedAt(),
		UpdatedAt:      it.UpdatedAt(),
	}
	if c := it.Coordinates(); c != nil {
		dto.Coordinates = &coordsDTO{Lat: c.Lat(), Lng: c.Lng(), Fixed: c.Fixed()}
	}
	for _, a := range it.Attempts() {
		dto.Attempts = append(dto.Attempts, attemptDTO{At: a.At, Event: string(a.Event), Note: a.Note})
	}
	return dto
}

func toDomain(dto itemDTO) (*item.Item, error) {
	id, err := kernel.UUIDFromString(dto.ID)
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

	var coords *kernel.Coordinates
	if dto.Coordinates != nil {
		c, err := kernel.RestoreCoordinates(dto.Coordinates.Lat, dto.Coordinates.Lng, dto.Coordinates.Fixed)
		if err != nil {
			return nil, err
		}
		coords = &c
	}

	attempts := make([]item.Attempt, 0, len(dto.Attempts))
	for _, a := range dto.Attempts {
		attempts = append(attempts, item.Attempt{At: a.At, Event: item.EventType(a.Event), Note: a.Note})
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
		Order:          dto.Order,
		Attempts:       attempts,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	})
}
