package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

// ErrReferenceCoordinateRequired is returned by Order in nearest mode when no
// reference point is known. The returned list is then in custom order.
var ErrReferenceCoordinateRequired = errors.New("reference coordinate is required for nearest ordering")

// SortMode selects how the work list is sequenced.
type SortMode string

const (
	SortCustom     SortMode = "custom"
	SortCreated    SortMode = "created"
	SortRedelivery SortMode = "redelivery"
	SortNearest    SortMode = "nearest"
)

// ParseSortMode accepts the mode names; an empty string means custom.
// "redelivery-priority" is accepted as an alias of redelivery.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortCustom, nil
	case SortCustom, SortCreated, SortRedelivery, SortNearest:
		return m, nil
	case "redelivery-priority":
		return SortRedelivery, nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("sort mode", fmt.Errorf("%q is not a valid sort mode", s))
}

// OrderingEngine filters and sorts items for display. It never mutates items and
// every sort is stable with respect to the input order.
type OrderingEngine struct{}

// NewOrderingEngine creates an OrderingEngine.
func NewOrderingEngine() OrderingEngine {
	return OrderingEngine{}
}

// Order applies filter, then sorts by mode. ref is only consulted in nearest mode.
//
// Example:
//
//	origin, _ := kernel.NewCoordinates(0, 0)
//	ordered, err := engine.Order(items, item.AllStatuses(), services.SortNearest, &origin)
func (e OrderingEngine) Order(
	items []*item.Item,
	filter item.StatusFilter,
	mode SortMode,
	ref *kernel.Coordinates,
) ([]*item.Item, error) {
	visible := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if filter.Matches(it) {
			visible = append(visible, it)
		}
	}

	switch mode {
	case SortCustom, "":
		sortByOrder(visible)
	case SortCreated:
		slices.SortStableFunc(visible, func(a, b *item.Item) int {
			return a.CreatedAt().Compare(b.CreatedAt())
		})
	case SortRedelivery:
		slices.SortStableFunc(visible, func(a, b *item.Item) int {
			if d := cmp.Compare(redeliveryBucket(a), redeliveryBucket(b)); d != 0 {
				return d
			}
			return cmp.Compare(a.Order(), b.Order())
		})
	case SortNearest:
		if ref == nil || ref.Validate() != nil {
			sortByOrder(visible)
			return visible, ErrReferenceCoordinateRequired
		}
		sortByDistance(visible, *ref)
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("sort mode", fmt.Errorf("%q is not a valid sort mode", mode))
	}

	return visible, nil
}

// Ranks assigns 1-based ranks in the order ids are given. The ids must be distinct.
func (e OrderingEngine) Ranks(ids []kernel.UUID) (map[kernel.UUID]int, error) {
	ranks := make(map[kernel.UUID]int, len(ids))
	for i, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		if _, ok := ranks[id]; ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("ids", fmt.Errorf("%s appears more than once", id))
		}
		ranks[id] = i + 1
	}
	return ranks, nil
}

func sortByOrder(items []*item.Item) {
	slices.SortStableFunc(items, func(a, b *item.Item) int {
		return cmp.Compare(a.Order(), b.Order())
	})
}

// redeliveryBucket: absent with a hint first, then absent without one, then the rest.
func redeliveryBucket(it *item.Item) int {
	if it.Status() != item.Absent {
		return 2
	}
	if strings.TrimSpace(it.RedeliveryAt()) == "" {
		return 1
	}
	return 0
}

func sortByDistance(items []*item.Item, ref kernel.Coordinates) {
	dist := make(map[*item.Item]float64, len(items))
	for _, it := range items {
		dist[it] = math.Inf(1)
		if c := it.Coordinates(); c != nil {
			if d, err := ref.DistanceMeters(*c); err == nil {
				dist[it] = d
			}
		}
	}
	slices.SortStableFunc(items, func(a, b *item.Item) int {
		da, db := dist[a], dist[b]
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
}
