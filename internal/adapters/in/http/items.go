package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/domain/services"
	"manifest/internal/pkg/errs"
)

// ListItems handles GET /api/v1/items?status=&sort=&lat=&lng=.
func (s *Server) ListItems(c echo.Context) error {
	filter, err := item.ParseStatusFilter(c.QueryParam("status"))
	if err != nil {
		return err
	}
	mode, err := services.ParseSortMode(c.QueryParam("sort"))
	if err != nil {
		return err
	}
	ref, err := referencePoint(c.QueryParam("lat"), c.QueryParam("lng"))
	if err != nil {
		return err
	}

	query, err := queries.NewListItemsQuery(filter, mode, ref)
	if err != nil {
		return err
	}
	resp, err := s.listItems.Handle(query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(resp))
}

// CreateItem handles POST /api/v1/items.
func (s *Server) CreateItem(c echo.Context) error {
	var req ItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	candidate, err := req.toCandidate()
	if err != nil {
		return err
	}

	cmd, err := commands.NewAddItemCommand(candidate)
	if err != nil {
		return err
	}
	id, err := s.addItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// GetItem handles GET /api/v1/items/:id.
func (s *Server) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return s.respondItem(c, http.StatusOK, id)
}

// UpdateItem handles PATCH /api/v1/items/:id.
func (s *Server) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ItemRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateItemCommand(id, patch)
	if err != nil {
		return err
	}
	if err = s.updateItem.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondItem(c, http.StatusOK, id)
}

// DeleteItem handles DELETE /api/v1/items/:id.
func (s *Server) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err = s.dispatcher.Dispatch(c.Request().Context(), commands.Action{
		ItemID: id,
		Kind:   commands.ActionDelete,
	}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RunAction handles POST /api/v1/items/:id/actions. Delivery is not an action:
// start_scan opens the confirmation session that leads to it.
func (s *Server) RunAction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ActionRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	action := commands.Action{
		ItemID:       id,
		Kind:         commands.ActionKind(req.Kind),
		RedeliveryAt: req.RedeliveryAt,
		Note:         req.Note,
	}
	if action.Kind == commands.ActionSetStatus {
		if action.Status, err = item.ParseStatus(req.Status); err != nil {
			return err
		}
	}

	res, err := s.dispatcher.Dispatch(c.Request().Context(), action)
	if err != nil {
		return err
	}

	resp := ActionResponse{Kind: string(res.Kind), Resolved: res.Resolved}
	switch res.Kind {
	case commands.ActionStartScan:
		resp.Session = toSessionResponse(res.Session)
	case commands.ActionDelete:
		return c.NoContent(http.StatusNoContent)
	default:
		it, getErr := s.items.Get(id)
		if getErr != nil {
			return getErr
		}
		ir := toItemResponse(it)
		resp.Item = &ir
	}
	return c.JSON(http.StatusOK, resp)
}

// ReorderItems handles POST /api/v1/items/reorder with the full display order.
func (s *Server) ReorderItems(c echo.Context) error {
	var req ReorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ids := make([]kernel.UUID, len(req.ItemIDs))
	for i, raw := range req.ItemIDs {
		id, err := parseID("itemIds", raw)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	cmd, err := commands.NewReorderItemsCommand(ids)
	if err != nil {
		return err
	}
	if err = s.reorder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PurgeDelivered handles DELETE /api/v1/items/delivered.
func (s *Server) PurgeDelivered(c echo.Context) error {
	removed, err := s.purge.Handle(c.Request().Context(), commands.NewPurgeDeliveredCommand())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PurgeResponse{Removed: removed})
}

// GeocodeItems handles POST /api/v1/items/geocode. The batch runs within the
// request; the client sees the report when it finishes.
func (s *Server) GeocodeItems(c echo.Context) error {
	var req GeocodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	delay := s.geocodeDelay
	if req.DelayMs != nil {
		delay = time.Duration(*req.DelayMs) * time.Millisecond
	}

	cmd, err := commands.NewGeocodeItemsCommand(delay)
	if err != nil {
		return err
	}
	report, err := s.geocode.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGeocodeResponse(report))
}

func (s *Server) respondItem(c echo.Context, status int, id kernel.UUID) error {
	it, err := s.items.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(status, toItemResponse(it))
}

func referencePoint(lat, lng string) (*kernel.Coordinates, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lat", err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("lng", err)
	}
	c, err := kernel.NewCoordinates(la, ln)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
