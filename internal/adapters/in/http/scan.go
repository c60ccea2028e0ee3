package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"manifest/internal/core/application/scangate"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// OpenScanSession handles POST /api/v1/scan-sessions. An open session for another
// item is cancelled first.
func (s *Server) OpenScanSession(c echo.Context) error {
	var req OpenScanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := parseID("itemId", req.ItemID)
	if err != nil {
		return err
	}

	res, err := s.dispatcher.Dispatch(c.Request().Context(), commands.Action{
		ItemID: id,
		Kind:   commands.ActionStartScan,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(res.Session))
}

// DecodeScan handles POST /api/v1/scan-sessions/current/decode: one decode event
// from the remote decoder, answered with its outcome.
func (s *Server) DecodeScan(c echo.Context) error {
	session, err := s.currentSession()
	if err != nil {
		return err
	}
	var req DecodeRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	ev := ports.DecodeEvent{Text: req.Text}
	switch {
	case req.NoSymbol:
		ev = ports.DecodeEvent{Err: ports.ErrNoSymbol}
	case req.Error != "":
		ev = ports.DecodeEvent{Err: errors.New(req.Error)}
	}

	out := session.OnDecode(c.Request().Context(), ev)
	return c.JSON(http.StatusOK, toOutcomeResponse(out, session.State()))
}

// FinalizeScan handles POST /api/v1/scan-sessions/current/finalize after a match.
func (s *Server) FinalizeScan(c echo.Context) error {
	session, err := s.currentSession()
	if err != nil {
		return err
	}
	var req FinalizeRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.Skip {
		err = session.SkipDisposition(ctx)
	} else {
		disposition, parseErr := item.ParseDisposition(req.Disposition)
		if parseErr != nil {
			return parseErr
		}
		err = session.Finalize(ctx, disposition, req.Note)
	}
	if err != nil {
		return err
	}
	return s.respondItem(c, http.StatusOK, session.ItemID())
}

// CancelScan handles DELETE /api/v1/scan-sessions/current. It succeeds when no
// session is open.
func (s *Server) CancelScan(c echo.Context) error {
	s.sessions.Close()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) currentSession() (*scangate.Session, error) {
	session, ok := s.sessions.Current()
	if !ok {
		return nil, errs.NewObjectNotFoundError("scan session", "current")
	}
	return session, nil
}
