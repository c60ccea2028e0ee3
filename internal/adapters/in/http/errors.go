package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"manifest/internal/pkg/errs"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func statusFor(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) {
		if ext.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}

	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicateCode):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// handleError is the echo error handler: domain errors become JSON with a
// matching status, everything unexpected becomes 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFor(err)
	resp := ErrorResponse{Code: status, Message: err.Error()}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp.Message = fmt.Sprint(he.Message)
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		resp.Fields = reqErr.Fields
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "status", status, "error", err)
		if status == http.StatusInternalServerError && !errors.Is(err, errs.ErrPersistence) {
			resp.Message = http.StatusText(status)
		}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, resp)
	}
	if writeErr != nil {
		s.logger.Warn("write error response", "error", writeErr)
	}
}
