package queries

import (
	"errors"
	"fmt"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/services"
)

// ItemReader is the read side of manifest.Store.
type ItemReader interface {
	List(filter item.StatusFilter) []*item.Item
}

// ListItemsQueryHandler builds the work list from the in-memory manifest.
type ListItemsQueryHandler struct {
	reader   ItemReader
	ordering services.OrderingEngine
}

// NewListItemsQueryHandler creates a ListItemsQueryHandler.
func NewListItemsQueryHandler(reader ItemReader, ordering services.OrderingEngine) ListItemsQueryHandler {
	return ListItemsQueryHandler{reader: reader, ordering: ordering}
}

// Handle filters, orders and numbers the items. Counts, PinCount and Mapped
// always cover the whole manifest, not only the filtered rows.
func (h ListItemsQueryHandler) Handle(query ListItemsQuery) (ListItemsResponse, error) {
	if err := query.Validate(); err != nil {
		return ListItemsResponse{}, err
	}

	all := h.reader.List(item.AllStatuses())
	resp := ListItemsResponse{
		Counts:   make(map[item.Status]int, len(item.Statuses())),
		PinCount: len(all),
		Mode:     query.Mode(),
	}
	for _, it := range all {
		resp.Counts[it.Status()]++
		if it.Coordinates() != nil {
			resp.Mapped++
		}
	}

	ordered, err := h.ordering.Order(all, query.Filter(), query.Mode(), query.Ref())
	if errors.Is(err, services.ErrReferenceCoordinateRequired) {
		resp.Degraded = true
		resp.Mode = services.SortCustom
	} else if err != nil {
		return ListItemsResponse{}, err
	}

	resp.Items = make([]ListedItem, 0, len(ordered))
	for i, it := range ordered {
		row := ListedItem{
			Position: i + 1,
			Label:    fmt.Sprintf("%d. %s / %s", i+1, it.Name(), it.Address()),
			Item:     it,
		}
		if c, ref := it.Coordinates(), query.Ref(); c != nil && ref != nil {
			if d, err := ref.DistanceMeters(*c); err == nil {
				row.DistanceMeters = &d
			}
		}
		resp.Items = append(resp.Items, row)
	}

	return resp, nil
}
