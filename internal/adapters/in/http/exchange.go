package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"manifest/internal/adapters/out/exchange"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/services"
	"manifest/internal/pkg/errs"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxImportBytes = 16 << 20
)

// Export handles GET /api/v1/export?format=csv|xlsx&status=. Items are written in
// custom order.
func (s *Server) Export(c echo.Context) error {
	filter, err := item.ParseStatusFilter(c.QueryParam("status"))
	if err != nil {
		return err
	}
	query, err := queries.NewListItemsQuery(filter, services.SortCustom, nil)
	if err != nil {
		return err
	}
	listed, err := s.listItems.Handle(query)
	if err != nil {
		return err
	}
	items := make([]*item.Item, len(listed.Items))
	for i, row := range listed.Items {
		items[i] = row.Item
	}

	var buf bytes.Buffer
	var contentType, ext string
	switch format := strings.ToLower(c.QueryParam("format")); format {
	case "", "csv":
		contentType, ext = mimeCSV, "csv"
		err = exchange.WriteCSV(&buf, items)
	case "xlsx":
		contentType, ext = mimeXLSX, "xlsx"
		err = exchange.WriteXLSX(&buf, items)
	default:
		return errs.NewValueIsInvalidErrorWithCause("format", errors.New(format+" is not csv or xlsx"))
	}
	if err != nil {
		return err
	}

	name := "manifest-" + time.Now().Format("20060102-150405") + "." + ext
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// Import handles POST /api/v1/import. The CSV arrives either as the raw body or as
// the multipart field "file". Unreadable rows are reported, not fatal.
func (s *Server) Import(c echo.Context) error {
	body, closeBody, err := importBody(c)
	if err != nil {
		return err
	}
	defer closeBody()

	items, rowErrs, err := exchange.ReadCSV(io.LimitReader(body, maxImportBytes))
	if err != nil {
		return err
	}

	resp := ImportResponse{Rejected: make([]string, 0, len(rowErrs))}
	for _, rowErr := range rowErrs {
		resp.Rejected = append(resp.Rejected, rowErr.Error())
	}
	if len(items) == 0 && len(rowErrs) > 0 {
		return c.JSON(http.StatusOK, resp)
	}

	cmd, err := commands.NewImportItemsCommand(items)
	if err != nil {
		return err
	}
	report, err := s.importItems.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	resp.Inserted = report.Inserted
	for _, rejected := range report.Rejected {
		resp.Rejected = append(resp.Rejected, rejected.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func importBody(c echo.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return c.Request().Body, func() {}, nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errs.NewValueIsRequiredErrorWithCause("file", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errs.NewValueIsInvalidErrorWithCause("file", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// LabelCandidates handles POST /api/v1/label-candidates: suggested fields for
// recognized label text. Nothing is stored.
func (s *Server) LabelCandidates(c echo.Context) error {
	var req LabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cand := s.extractor.Extract(req.Text)
	return c.JSON(http.StatusOK, LabelResponse{
		Code:       cand.Code,
		Name:       cand.Name,
		PostalCode: cand.PostalCode,
		Phone:      cand.Phone,
		Address:    cand.Address,
	})
}

// DaySummary handles GET /api/v1/summary?day=YYYY-MM-DD from the sync backend.
// The day defaults to today in local time.
func (s *Server) DaySummary(c echo.Context) error {
	day := time.Now()
	if raw := c.QueryParam("day"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("day", err)
		}
		day = parsed
	}

	query, err := queries.NewGetDaySummaryQuery(day)
	if err != nil {
		return err
	}
	resp, err := s.daySummary.Handle(c.Request().Context(), query)
	if err != nil {
		return errs.NewExternalServiceError("sync backend", err)
	}
	return c.JSON(http.StatusOK, SummaryResponse{
		Day:      resp.Day.Format(time.DateOnly),
		Total:    resp.Total,
		ByStatus: resp.ByStatus,
	})
}
