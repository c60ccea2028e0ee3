// Package queries contains read operations over the manifest and the sync backend.
// Queries return read models shaped for the list screen, the CLI and reporting.
package queries

import (
	"errors"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/domain/services"
	"manifest/internal/pkg/guard"
)

var (
	ErrListItemsQueryIsNotConstructed = errors.New(
		"ListItemsQuery must be created via NewListItemsQuery constructor",
	)
)

// ListItemsQuery asks for the visible work list.
//
// Example:
//
//	query, err := NewListItemsQuery(item.OnlyStatus(item.Absent), services.SortRedelivery, nil)
//	if err != nil {
//	    return err
//	}
//	list, err := handler.Handle(query)
//	for _, row := range list.Items {
//	    fmt.Println(row.Label)
//	}
type ListItemsQuery struct {
	filter item.StatusFilter
	mode   services.SortMode
	ref    *kernel.Coordinates

	guard guard.ConstructorGuard
}

// NewListItemsQuery validates the reference point when one is given. An empty mode
// means custom order.
func NewListItemsQuery(filter item.StatusFilter, mode services.SortMode, ref *kernel.Coordinates) (ListItemsQuery, error) {
	if mode == "" {
		mode = services.SortCustom
	}
	if ref != nil {
		if err := ref.Validate(); err != nil {
			return ListItemsQuery{}, err
		}
	}
	return ListItemsQuery{filter: filter, mode: mode, ref: ref, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListItemsQuery) Validate() error {
	return q.guard.Validate(ErrListItemsQueryIsNotConstructed)
}

func (q ListItemsQuery) Filter() item.StatusFilter { return q.filter }
func (q ListItemsQuery) Mode() services.SortMode   { return q.mode }
func (q ListItemsQuery) Ref() *kernel.Coordinates  { return q.ref }

// ListedItem is one row of the work list.
type ListedItem struct {
	Position       int
	Label          string
	Item           *item.Item
	DistanceMeters *float64
}

// ListItemsResponse is the ordered list with its counters. PinCount is the number
// of items in the manifest whatever the filter; Mapped counts those that carry
// coordinates. Degraded is set when
// nearest ordering fell back to custom order for lack of a reference point.
type ListItemsResponse struct {
	Items    []ListedItem
	Counts   map[item.Status]int
	PinCount int
	Mapped   int
	Mode     services.SortMode
	Degraded bool
}
